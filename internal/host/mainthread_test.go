package host

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/studiolink/studiolink/internal/logbuf"
)

func TestQueuePreservesSubmissionOrder(t *testing.T) {
	q := NewMainThreadQueue(16, nil)
	defer q.Close()

	var got []int
	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		i := i
		q.Defer(func() {
			got = append(got, i)
			if i == 4 {
				close(done)
			}
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go q.Run(ctx)

	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("queue did not drain in time")
	}
	require.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestDeferAfterCloseDrops(t *testing.T) {
	q := NewMainThreadQueue(4, nil)
	q.Close()

	q.Defer(func() { t.Fatal("must not run after close") })

	enqueued, dropped := q.Stats()
	require.Zero(t, enqueued)
	require.EqualValues(t, 1, dropped)
}

func TestDeferNeverBlocksWhenSaturated(t *testing.T) {
	q := NewMainThreadQueue(2, nil)
	defer q.Close()

	// No consumer: the third call must drop instead of blocking.
	finished := make(chan struct{})
	go func() {
		for i := 0; i < 3; i++ {
			q.Defer(func() {})
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Defer blocked on a saturated queue")
	}
	enqueued, dropped := q.Stats()
	require.EqualValues(t, 2, enqueued)
	require.EqualValues(t, 1, dropped)
}

func TestRunIsolatesPanics(t *testing.T) {
	q := NewMainThreadQueue(4, nil)
	defer q.Close()

	done := make(chan struct{})
	q.Defer(func() { panic("bad callback") })
	q.Defer(func() { close(done) })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go q.Run(ctx)

	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("queue stopped after a panicking callback")
	}
}

func TestNilCallbackIgnored(t *testing.T) {
	q := NewMainThreadQueue(4, nil)
	defer q.Close()
	q.Defer(nil)
	enqueued, dropped := q.Stats()
	require.Zero(t, enqueued)
	require.Zero(t, dropped)
}

func TestSimHostObserverTeardown(t *testing.T) {
	h := NewSimHost(nil)
	h.Start()
	defer h.Close()

	var calls int
	cancel := h.SubscribeLogs(func(logbuf.Entry) { calls++ })

	h.EmitLog(logbuf.Entry{Message: "first"})
	cancel()
	h.EmitLog(logbuf.Entry{Message: "second"})

	require.Equal(t, 1, calls)
}
