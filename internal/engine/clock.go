package engine

import "sync/atomic"

// Clock is the monotonic causal clock for the ledger.
//
// Every accepted operation is stamped with a strictly increasing ordinal
// from this clock. Ordinals replace wall-clock time entirely:
// - Deterministic ordering (no wall-clock race conditions)
// - Identical inputs produce identical created_at values
// - Causal relationships are explicit
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
// However, the Engine's single-writer design means only one goroutine
// typically calls Next().
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a new clock starting at a specific ordinal.
// Used to resume from the ledger's highest created_at across restarts.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next ordinal and increments the clock.
// Calls are linearizable - each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current ordinal without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
