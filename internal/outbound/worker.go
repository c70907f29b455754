package outbound

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/relaybrook/msgbridge/internal/logging"
	"github.com/relaybrook/msgbridge/internal/metrics"
	"github.com/relaybrook/msgbridge/internal/tracing"
)

// Sender delivers one message to the external messaging channel.
type Sender interface {
	Send(ctx context.Context, recipient, body string) error
}

// Worker is the queue's sole consumer. It drains messages strictly in
// arrival order with at most one send in flight; the channel it talks to
// has no defined behavior under concurrent sends from the same origin.
type Worker struct {
	queue  *Queue
	sender Sender
	log    *logging.Logger
}

func NewWorker(queue *Queue, sender Sender, log *logging.Logger) *Worker {
	return &Worker{queue: queue, sender: sender, log: log}
}

// Run processes the queue until the context is cancelled. A send failure is
// logged and the message discarded; there is no retry and no re-enqueue.
func (w *Worker) Run(ctx context.Context) {
	for {
		m, err := w.queue.Dequeue(ctx)
		if err != nil {
			w.log.Plain().Info("delivery worker stopped")
			return
		}

		sendCtx, span := tracing.StartSpan(ctx, "delivery.send",
			attribute.String("message_id", m.ID),
			attribute.String("origin", m.Origin),
		)

		if err := w.sender.Send(sendCtx, m.Recipient, m.Body); err != nil {
			tracing.SetSpanError(sendCtx, err)
			w.log.WithContext(sendCtx).WithMessage(m.ID).WithRecipient(m.Recipient).
				WithError(err).Error("send failed, message dropped")
			metrics.RecordDelivery("failed")
		} else {
			w.log.WithContext(sendCtx).WithMessage(m.ID).WithRecipient(m.Recipient).
				Info("message sent")
			metrics.RecordDelivery("sent")
		}

		span.End()
	}
}
