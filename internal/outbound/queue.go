package outbound

import (
	"context"
	"sync"

	"github.com/relaybrook/msgbridge/internal/metrics"
)

// Queue is an unbounded multi-producer, single-consumer FIFO of outbound
// messages. Enqueue is safe under concurrent callers; Dequeue is intended
// for the single delivery worker. The notify channel carries a wake-up, not
// the data itself, so admission never blocks on the consumer.
type Queue struct {
	mu     sync.Mutex
	items  []Message
	notify chan struct{}
}

func NewQueue() *Queue {
	return &Queue{
		notify: make(chan struct{}, 1),
	}
}

// Enqueue appends the message to the tail and returns immediately. Messages
// must already have passed NewMessage validation; Enqueue never fails for
// queue-state reasons.
func (q *Queue) Enqueue(m Message) {
	q.mu.Lock()
	q.items = append(q.items, m)
	// Gauge updates stay under the lock so racing operations cannot publish
	// a stale depth.
	metrics.QueueDepth.Set(float64(len(q.items)))
	q.mu.Unlock()

	metrics.RecordEnqueue(m.Origin)

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Dequeue removes and returns the head, blocking until an item is available
// or the context is done.
func (q *Queue) Dequeue(ctx context.Context) (Message, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			m := q.items[0]
			q.items = q.items[1:]
			metrics.QueueDepth.Set(float64(len(q.items)))
			q.mu.Unlock()
			return m, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return Message{}, ctx.Err()
		case <-q.notify:
		}
	}
}

// Len reports the number of messages currently waiting.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
