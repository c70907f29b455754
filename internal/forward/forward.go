// Package forward relays inbound messages to the configured remote webhook.
// Forwarding is best-effort: failures are logged and counted, never fatal.
package forward

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/relaybrook/msgbridge/internal/inbound"
	"github.com/relaybrook/msgbridge/internal/logging"
	"github.com/relaybrook/msgbridge/internal/metrics"
)

// Payload is the webhook body for one forwarded message.
type Payload struct {
	From string `json:"From"`
	To   string `json:"To"`
	Body string `json:"Body"`
}

// Forwarder posts inbound messages to one webhook URL with a shared client.
type Forwarder struct {
	url    string
	client *http.Client
	log    *logging.Logger
}

func NewForwarder(url string, timeout time.Duration, log *logging.Logger) *Forwarder {
	return &Forwarder{
		url:    url,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// HandleInbound forwards the message. Messages sent by this account and
// messages with no resolvable sender are skipped.
func (f *Forwarder) HandleInbound(ctx context.Context, m inbound.Message) {
	if m.FromMe {
		metrics.RecordForward("skipped")
		return
	}
	sender := m.Sender()
	if sender == "" {
		metrics.RecordForward("skipped")
		return
	}

	to := m.ChatIdentifier
	if to == "" {
		to = "unknown"
	}

	if err := f.post(ctx, Payload{From: sender, To: to, Body: m.Body()}); err != nil {
		metrics.RecordForward("failed")
		f.log.WithContext(ctx).WithField("from", sender).WithError(err).Warn("inbound forward failed")
		return
	}
	metrics.RecordForward("forwarded")
	f.log.WithContext(ctx).WithField("from", sender).Info("inbound message forwarded")
}

func (f *Forwarder) post(ctx context.Context, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal forward payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build forward request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
