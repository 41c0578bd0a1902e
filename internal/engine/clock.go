package engine

import "sync/atomic"

// Clock is a monotonic revision counter.
//
// A session ticks its clock on every observable state change (load,
// selection, busy transition, commit, undo). Renderers compare revisions to
// decide whether a redraw is needed without taking the session lock.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Uint64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next revision and increments the clock.
func (c *Clock) Next() uint64 {
	return c.seq.Add(1)
}

// Current returns the current revision without incrementing.
func (c *Clock) Current() uint64 {
	return c.seq.Load()
}
