package host

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"
)

const defaultQueueDepth = 256

type deferredCall struct {
	id string
	fn func()
}

// MainThreadQueue is a single-consumer queue of deferred calls drained on the
// host control goroutine. Defer never blocks the submitting goroutine: when
// the queue is saturated or closed the call is dropped and logged, matching
// the at-most-once, best-effort contract.
type MainThreadQueue struct {
	ctx    context.Context
	cancel context.CancelFunc
	calls  chan deferredCall
	logger *log.Logger
	once   sync.Once

	mu       sync.Mutex
	enqueued uint64
	dropped  uint64
}

// NewMainThreadQueue constructs a queue with the given depth (<=0 selects the
// default). The logger may be nil.
func NewMainThreadQueue(depth int, logger *log.Logger) *MainThreadQueue {
	if depth <= 0 {
		depth = defaultQueueDepth
	}
	ctx, cancel := context.WithCancel(context.Background())
	q := new(MainThreadQueue)
	q.ctx = ctx
	q.cancel = cancel
	q.calls = make(chan deferredCall, depth)
	q.logger = logger
	return q
}

// Defer schedules fn for execution on the consumer goroutine.
func (q *MainThreadQueue) Defer(fn func()) {
	if fn == nil {
		return
	}
	call := deferredCall{id: uuid.NewString(), fn: fn}
	// Closed wins over a free buffer slot so post-close submissions drop
	// deterministically.
	select {
	case <-q.ctx.Done():
		q.drop(call, "queue closed")
		return
	default:
	}
	select {
	case q.calls <- call:
		q.mu.Lock()
		q.enqueued++
		q.mu.Unlock()
	default:
		q.drop(call, "queue saturated")
	}
}

// Run drains the queue until ctx is cancelled or the queue is closed. The
// host calls this from its own control goroutine; panics in a deferred call
// are isolated so one bad callback cannot kill the loop.
func (q *MainThreadQueue) Run(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.ctx.Done():
			return
		case call, ok := <-q.calls:
			if !ok {
				return
			}
			q.invoke(call)
		}
	}
}

// Close stops accepting new calls. Calls already buffered may still run
// before the consumer observes the close; none are accepted after.
func (q *MainThreadQueue) Close() {
	q.once.Do(func() {
		q.cancel()
	})
}

// Stats reports enqueued and dropped call totals.
func (q *MainThreadQueue) Stats() (enqueued, dropped uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.enqueued, q.dropped
}

func (q *MainThreadQueue) invoke(call deferredCall) {
	defer func() {
		if r := recover(); r != nil && q.logger != nil {
			q.logger.Printf("deferred call %s panicked: %v", call.id, r)
		}
	}()
	call.fn()
}

func (q *MainThreadQueue) drop(call deferredCall, reason string) {
	q.mu.Lock()
	q.dropped++
	q.mu.Unlock()
	if q.logger != nil {
		q.logger.Printf("deferred call %s dropped: %s", call.id, reason)
	}
}
