package engine

import "sync/atomic"

// Clock is a monotonic logical clock numbering the steps of a session.
//
// Step results carry a seq from this clock instead of wall-clock time, so
// reports from identical plans are identical.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations),
// although a session only calls it from its own goroutine.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number. The first call returns 1.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
