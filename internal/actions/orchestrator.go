// Package actions runs the side-effect sequence for a non-suppressed call
// event: decline the call, restart the Messages app, queue the automated
// reply. Every step is best-effort and isolated; a failure in one never
// prevents the ones after it.
package actions

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/relaybrook/msgbridge/internal/automation"
	"github.com/relaybrook/msgbridge/internal/logging"
	"github.com/relaybrook/msgbridge/internal/metrics"
	"github.com/relaybrook/msgbridge/internal/outbound"
	"github.com/relaybrook/msgbridge/internal/tracing"
)

// Orchestrator holds the configured actions for one trigger.
type Orchestrator struct {
	decline   automation.Runner
	restart   automation.Runner
	queue     *outbound.Queue
	recipient string
	template  string
	log       *logging.Logger
}

func NewOrchestrator(decline, restart automation.Runner, queue *outbound.Queue, recipient, template string, log *logging.Logger) *Orchestrator {
	return &Orchestrator{
		decline:   decline,
		restart:   restart,
		queue:     queue,
		recipient: recipient,
		template:  template,
		log:       log,
	}
}

// HandleCall executes the fixed action sequence for the identified call.
// No action is retried within a single trigger; a re-fire only happens if a
// later event survives the cooldown.
func (o *Orchestrator) HandleCall(ctx context.Context, callID string) {
	ctx, span := tracing.StartSpan(ctx, "actions.handle_call",
		attribute.String("call_id", callID),
	)
	defer span.End()

	if err := o.decline.Run(ctx); err != nil {
		tracing.SetSpanError(ctx, err)
		metrics.RecordAutomationFailure("decline")
		o.log.WithContext(ctx).WithCall(callID).WithError(err).Warn("decline automation failed")
	}

	if err := o.restart.Run(ctx); err != nil {
		tracing.SetSpanError(ctx, err)
		metrics.RecordAutomationFailure("restart")
		o.log.WithContext(ctx).WithCall(callID).WithError(err).Warn("restart automation failed")
	}

	m, err := outbound.NewMessage(o.recipient, o.template, "watcher")
	if err != nil {
		// Only possible with an empty reply recipient or template.
		tracing.SetSpanError(ctx, err)
		o.log.WithContext(ctx).WithCall(callID).WithError(err).Error("automated reply rejected")
		return
	}
	o.queue.Enqueue(m)

	tracing.AddSpanEvent(ctx, "reply.enqueued", attribute.String("message_id", m.ID))
	o.log.WithContext(ctx).WithCall(callID).WithMessage(m.ID).Info("automated reply queued")
}
