package sender

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const (
	SigHeader = "X-Msgbridge-Signature" // sha256=<hex>
	TSHeader  = "X-Msgbridge-Timestamp" // unix seconds
)

// HTTP posts messages to a send-service endpoint, signing each request with
// HMAC-SHA256 over body||timestamp when a secret is configured.
type HTTP struct {
	url    string
	secret string
	client *http.Client
}

func NewHTTP(url, secret string, timeout time.Duration) *HTTP {
	return &HTTP{
		url:    url,
		secret: secret,
		client: &http.Client{Timeout: timeout},
	}
}

type sendPayload struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// Send posts the message. Any transport error or non-2xx status is a send
// failure; the caller decides what that means (the delivery worker drops).
func (h *HTTP) Send(ctx context.Context, recipient, body string) error {
	payload, err := json.Marshal(sendPayload{To: recipient, Message: body})
	if err != nil {
		return fmt.Errorf("marshal send payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if h.secret != "" {
		ts := strconv.FormatInt(time.Now().Unix(), 10)
		req.Header.Set(TSHeader, ts)
		req.Header.Set(SigHeader, "sha256="+Sign(h.secret, payload, ts))
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("send service returned status %d", resp.StatusCode)
	}
	return nil
}

// Sign computes the hex HMAC-SHA256 of body followed by the timestamp.
func Sign(secret string, body []byte, ts string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	mac.Write([]byte(ts))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a signature header value produced by Sign, allowing the
// timestamp to differ from now by at most leeway.
func Verify(secret string, body []byte, ts, sigHeaderVal string, leeway time.Duration) (bool, string) {
	if ts == "" || sigHeaderVal == "" {
		return false, "missing headers"
	}
	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return false, "invalid timestamp"
	}
	now := time.Now().Unix()
	if abs64(now-unix) > int64(leeway.Seconds()) {
		return false, "timestamp too far from now (outside leeway)"
	}
	got := sigHeaderVal
	if len(got) > 7 && got[:7] == "sha256=" {
		got = got[7:]
	}
	want := Sign(secret, body, ts)
	if !hmac.Equal([]byte(got), []byte(want)) {
		return false, "sig mismatch"
	}
	return true, ""
}

func abs64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
