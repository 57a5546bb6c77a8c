package engine

import (
	"sync"

	"github.com/roach88/microlog/internal/tweet"
)

// OpKind distinguishes the three mutation kinds.
type OpKind string

const (
	// OpPost creates an original tweet.
	OpPost OpKind = "post"
	// OpRetweet creates a quote-repost of an existing tweet.
	OpRetweet OpKind = "retweet"
	// OpComment creates a comment on an existing tweet.
	OpComment OpKind = "comment"
)

// Op is one mutation submitted to the engine. Target is the quoted
// tweet for OpRetweet and the commented-on tweet for OpComment; it is
// ignored for OpPost.
type Op struct {
	Kind   OpKind
	Author string
	Text   string
	Target *tweet.ID

	// Reply, when non-nil, receives the outcome. Must be buffered so
	// the Run loop never blocks on a caller that gave up.
	Reply chan<- OpResult
}

// OpResult is the outcome of one operation. On rejection Err is a
// *tweet.RejectError and Tweet is the zero value.
type OpResult struct {
	Tweet tweet.Tweet
	Err   error
}

// opQueue is a thread-safe FIFO queue for operations.
//
// The queue is unbounded so that submitters (HTTP handlers, CLI) never
// block on a busy writer.
//
// Thread-safety is provided for external enqueuing while the Engine's
// Run loop dequeues. In practice, most usage is single-threaded.
//
// The queue uses a channel for signaling to enable context-aware waiting
// in the Run loop (prevents goroutine hangs on context cancellation).
type opQueue struct {
	mu     sync.Mutex
	ops    []Op
	closed bool
	signal chan struct{} // Signals op availability (buffered, size 1)
}

// newOpQueue creates an empty op queue.
func newOpQueue() *opQueue {
	return &opQueue{
		ops:    make([]Op, 0, 64), // Pre-allocate for typical workloads
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds an op to the back of the queue.
// Thread-safe: may be called from any goroutine.
// Returns false if the queue is closed.
func (q *opQueue) Enqueue(op Op) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.ops = append(q.ops, op)

	// Signal availability (non-blocking - buffer of 1 coalesces multiple signals)
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue attempts to dequeue without blocking.
// Returns (Op{}, false) if queue is empty.
func (q *opQueue) TryDequeue() (Op, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.ops) == 0 {
		return Op{}, false
	}

	op := q.ops[0]

	// Nil out the slot so the Op's pointers (Target, Reply) do not pin
	// memory until the underlying array is reallocated.
	q.ops[0] = Op{}

	if len(q.ops) == 1 {
		// Last element - reset to empty slice with original capacity
		q.ops = q.ops[:0]
	} else {
		q.ops = q.ops[1:]
	}

	return op, true
}

// Wait returns a channel that signals when ops may be available.
// Use with select for context-aware waiting:
//
//	select {
//	case <-ctx.Done():
//	    return ctx.Err()
//	case <-q.Wait():
//	    // Try TryDequeue
//	}
func (q *opQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *opQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ops)
}

// Close signals that no more ops will be enqueued.
// Wakes any blocked waiters by closing the signal channel.
func (q *opQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return // Already closed
	}

	q.closed = true
	close(q.signal) // Wakes all waiters
}
