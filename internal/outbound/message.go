package outbound

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxBodyChars is the upper bound on a message body accepted for delivery.
// Overridable at startup via configuration.
var MaxBodyChars = 10000

// ErrInvalidMessage marks submissions rejected before queue admission.
var ErrInvalidMessage = errors.New("invalid message")

// Message is an immutable outbound message. It is owned by the queue from
// admission until the delivery worker hands it to the sender, and discarded
// afterwards regardless of the send outcome.
type Message struct {
	ID         string    `json:"id"`
	Recipient  string    `json:"recipient"`
	Body       string    `json:"body"`
	Origin     string    `json:"origin"` // api, watcher
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewMessage validates and normalizes a submission. Recipient and body are
// trimmed; both must be non-empty after trimming and the body must not
// exceed MaxBodyChars.
func NewMessage(recipient, body, origin string) (Message, error) {
	recipient = strings.TrimSpace(recipient)
	body = strings.TrimSpace(body)

	if recipient == "" {
		return Message{}, fmt.Errorf("%w: recipient is empty", ErrInvalidMessage)
	}
	if body == "" {
		return Message{}, fmt.Errorf("%w: body is empty", ErrInvalidMessage)
	}
	if len([]rune(body)) > MaxBodyChars {
		return Message{}, fmt.Errorf("%w: body exceeds %d characters", ErrInvalidMessage, MaxBodyChars)
	}

	return Message{
		ID:         uuid.NewString(),
		Recipient:  recipient,
		Body:       body,
		Origin:     origin,
		EnqueuedAt: time.Now().UTC(),
	}, nil
}
