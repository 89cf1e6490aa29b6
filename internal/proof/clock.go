package proof

import "sync/atomic"

// Clock stamps history entries with strictly increasing sequence numbers.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock whose first stamp is 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock resuming after start. Used when a stored proof
// is reopened.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued sequence number.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
