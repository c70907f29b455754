package outbound

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/relaybrook/msgbridge/internal/metrics"
)

func mustMessage(t *testing.T, recipient, body string) Message {
	t.Helper()
	m, err := NewMessage(recipient, body, "api")
	if err != nil {
		t.Fatalf("NewMessage(%q, %q) failed: %v", recipient, body, err)
	}
	return m
}

func TestQueueFIFOOrder(t *testing.T) {
	q := NewQueue()
	ctx := context.Background()

	bodies := []string{"A", "B", "C"}
	for _, b := range bodies {
		q.Enqueue(mustMessage(t, "+15551234567", b))
	}

	for i, want := range bodies {
		m, err := q.Dequeue(ctx)
		if err != nil {
			t.Fatalf("Dequeue() #%d failed: %v", i, err)
		}
		if m.Body != want {
			t.Errorf("Dequeue() #%d body = %q, want %q", i, m.Body, want)
		}
	}
	if q.Len() != 0 {
		t.Errorf("queue depth after draining = %d, want 0", q.Len())
	}
}

func TestQueueDepthGaugeTracksLen(t *testing.T) {
	q := NewQueue()
	ctx := context.Background()

	// Churn enqueues and dequeues concurrently; the gauge must settle on the
	// true depth once all operations complete.
	const producers = 4
	const perProducer = 25

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Enqueue(mustMessage(t, "+15551234567", fmt.Sprintf("p%d-%03d", p, i)))
			}
		}(p)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < producers*perProducer/2; i++ {
			if _, err := q.Dequeue(ctx); err != nil {
				return
			}
		}
	}()
	wg.Wait()

	want := float64(q.Len())
	if got := testutil.ToFloat64(metrics.QueueDepth); got != want {
		t.Errorf("queue depth gauge = %f, want %f (Len)", got, want)
	}
}

func TestQueueDequeueBlocksUntilEnqueue(t *testing.T) {
	q := NewQueue()
	ctx := context.Background()

	got := make(chan Message, 1)
	go func() {
		m, err := q.Dequeue(ctx)
		if err != nil {
			return
		}
		got <- m
	}()

	select {
	case <-got:
		t.Fatal("Dequeue() returned before anything was enqueued")
	case <-time.After(20 * time.Millisecond):
	}

	q.Enqueue(mustMessage(t, "+15551234567", "wake up"))

	select {
	case m := <-got:
		if m.Body != "wake up" {
			t.Errorf("Dequeue() body = %q, want %q", m.Body, "wake up")
		}
	case <-time.After(time.Second):
		t.Fatal("Dequeue() did not observe the enqueued message")
	}
}

func TestQueueDequeueRespectsContext(t *testing.T) {
	q := NewQueue()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := q.Dequeue(ctx)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Dequeue() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Dequeue() did not return after context cancellation")
	}
}

func TestQueueConcurrentProducers(t *testing.T) {
	q := NewQueue()
	ctx := context.Background()

	const producers = 4
	const perProducer = 50

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Enqueue(mustMessage(t, fmt.Sprintf("+1555000%04d", p), fmt.Sprintf("p%d-%03d", p, i)))
			}
		}(p)
	}
	wg.Wait()

	// Every message arrives exactly once, and each producer's own messages
	// come out in the order that producer enqueued them.
	lastSeen := make([]int, producers)
	for i := range lastSeen {
		lastSeen[i] = -1
	}
	total := 0
	for total < producers*perProducer {
		m, err := q.Dequeue(ctx)
		if err != nil {
			t.Fatalf("Dequeue() failed: %v", err)
		}
		var p, seq int
		if _, err := fmt.Sscanf(m.Body, "p%d-%03d", &p, &seq); err != nil {
			t.Fatalf("unexpected body %q: %v", m.Body, err)
		}
		if seq <= lastSeen[p] {
			t.Fatalf("producer %d order violated: saw %d after %d", p, seq, lastSeen[p])
		}
		lastSeen[p] = seq
		total++
	}
	if q.Len() != 0 {
		t.Errorf("queue depth after draining = %d, want 0", q.Len())
	}
}
