// Package watch runs the event pipeline: stream reader, keyword filter,
// identity extraction, cooldown, action dispatch. The whole chain runs as
// one sequential task per line; the cooldown table is touched nowhere else.
package watch

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/relaybrook/msgbridge/internal/callid"
	"github.com/relaybrook/msgbridge/internal/cooldown"
	"github.com/relaybrook/msgbridge/internal/logging"
	"github.com/relaybrook/msgbridge/internal/metrics"
	"github.com/relaybrook/msgbridge/internal/stream"
	"github.com/relaybrook/msgbridge/internal/tracing"
)

// Handler receives the identified call once the cooldown has passed.
type Handler interface {
	HandleCall(ctx context.Context, callID string)
}

// Watcher supervises the stream and applies the pipeline to each line.
type Watcher struct {
	source  stream.Source
	keyword string
	table   *cooldown.Table
	handler Handler
	backoff time.Duration // wait before re-acquiring a dead stream
	log     *logging.Logger
	now     func() time.Time

	alive atomic.Bool
}

func NewWatcher(source stream.Source, keyword string, table *cooldown.Table, handler Handler, backoff time.Duration, log *logging.Logger) *Watcher {
	return &Watcher{
		source:  source,
		keyword: strings.ToLower(keyword),
		table:   table,
		handler: handler,
		backoff: backoff,
		log:     log,
		now:     time.Now,
	}
}

// Run consumes the stream until the context is cancelled. When the stream
// ends it is re-acquired from scratch after the configured backoff; letting
// the watcher die silently would mean permanent loss of monitoring.
func (w *Watcher) Run(ctx context.Context) {
	for {
		lines, err := w.source.Lines(ctx)
		if err != nil {
			w.log.Plain().WithError(err).Error("failed to acquire log stream")
		} else {
			w.alive.Store(true)
			w.log.Plain().Info("log stream acquired")
			for line := range lines {
				w.handleLine(ctx, line)
			}
			w.alive.Store(false)
			w.log.Plain().Warn("log stream ended")
		}

		metrics.StreamRestartsTotal.Inc()
		select {
		case <-ctx.Done():
			w.log.Plain().Info("watcher stopped")
			return
		case <-time.After(w.backoff):
		}
	}
}

// Alive reports whether the watcher currently holds a live stream.
func (w *Watcher) Alive() bool {
	return w.alive.Load()
}

// handleLine runs the filter → extract → cooldown → dispatch chain for one
// line. Lines without the trigger keyword are ignored.
func (w *Watcher) handleLine(ctx context.Context, line string) {
	if !strings.Contains(strings.ToLower(line), w.keyword) {
		return
	}
	metrics.CallEventsTotal.Inc()

	id := callid.Extract(line)
	if !w.table.ShouldTrigger(id, w.now()) {
		metrics.RecordTrigger("suppressed")
		w.log.Plain().WithCall(id).Debug("trigger suppressed by cooldown")
		return
	}
	metrics.RecordTrigger("fired")

	ctx, span := tracing.StartSpan(ctx, "watch.trigger",
		attribute.String("call_id", id),
	)
	w.log.WithContext(ctx).WithCall(id).Info("incoming call detected")
	w.handler.HandleCall(ctx, id)
	span.End()
}
