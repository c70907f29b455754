// Package inbound reads messages observed by the external monitor process
// as JSON lines and hands them to the forwarder.
package inbound

import (
	"context"
	"encoding/json"
	"time"

	"github.com/relaybrook/msgbridge/internal/logging"
	"github.com/relaybrook/msgbridge/internal/metrics"
	"github.com/relaybrook/msgbridge/internal/stream"
)

// Message is one inbound message as emitted by the monitor.
type Message struct {
	FromMe            bool   `json:"is_from_me"`
	Handle            string `json:"handle_id_str"`
	UncanonicalizedID string `json:"uncanonicalized_id"`
	ChatIdentifier    string `json:"chat_identifier"`
	Text              string `json:"message_text"`
	AttributedBody    string `json:"decoded_attributed_body"`
}

// Sender resolves the reply address for the message: handle first, then the
// uncanonicalized id, then the chat identifier. Empty means unattributable.
func (m Message) Sender() string {
	if m.Handle != "" {
		return m.Handle
	}
	if m.UncanonicalizedID != "" {
		return m.UncanonicalizedID
	}
	return m.ChatIdentifier
}

// Body returns the message text, falling back to the decoded attributed body.
func (m Message) Body() string {
	if m.Text != "" {
		return m.Text
	}
	return m.AttributedBody
}

// Handler consumes one inbound message.
type Handler interface {
	HandleInbound(ctx context.Context, m Message)
}

// Run decodes messages from the source and dispatches them until the stream
// ends or the context is cancelled. Undecodable lines are logged and
// skipped; the monitor interleaves diagnostics with its JSON output.
func Run(ctx context.Context, source stream.Source, handler Handler, log *logging.Logger) error {
	lines, err := source.Lines(ctx)
	if err != nil {
		return err
	}
	for line := range lines {
		var m Message
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			log.Plain().WithField("line_len", len(line)).Debug("skipping non-JSON monitor line")
			continue
		}
		handler.HandleInbound(ctx, m)
	}
	return nil
}

// Monitor supervises the decode loop. The monitor process exiting would
// otherwise end forwarding for the rest of the process lifetime; instead the
// stream is re-acquired from scratch after the configured backoff.
type Monitor struct {
	source  stream.Source
	handler Handler
	backoff time.Duration
	log     *logging.Logger
}

func NewMonitor(source stream.Source, handler Handler, backoff time.Duration, log *logging.Logger) *Monitor {
	return &Monitor{
		source:  source,
		handler: handler,
		backoff: backoff,
		log:     log,
	}
}

// Run dispatches inbound messages until the context is cancelled, restarting
// the monitor stream whenever it dies.
func (m *Monitor) Run(ctx context.Context) {
	for {
		if err := Run(ctx, m.source, m.handler, m.log); err != nil {
			m.log.Plain().WithError(err).Error("failed to acquire inbound monitor stream")
		} else {
			m.log.Plain().Warn("inbound monitor stream ended")
		}

		metrics.MonitorRestartsTotal.Inc()
		select {
		case <-ctx.Done():
			m.log.Plain().Info("inbound monitor stopped")
			return
		case <-time.After(m.backoff):
		}
	}
}
