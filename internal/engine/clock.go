package engine

import "sync/atomic"

// Sequencer stamps compilations with a strictly increasing logical seq.
// Implemented by Clock and by testutil.DeterministicClock.
type Sequencer interface {
	Next() int64
	Current() int64
}

// Clock is a monotonic logical clock safe for concurrent use.
//
// Log ordering uses seq only, never wall-clock time, so two runs over the
// same input record identical logs.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock whose first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock that resumes after start.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next increments the clock and returns the new value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last value handed out, or the start value.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
