package ledger

import (
	"sync"
	"time"
)

// Clock hands out strictly increasing UTC instants at microsecond precision,
// so timestamps order ledger writes even when the wall clock stalls or steps back.
type Clock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

// Now returns the next instant.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC().Truncate(time.Microsecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	c.last = t
	return t
}

// Observe raises the floor so later instants come after t.
func (c *Clock) Observe(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t = t.UTC()
	if t.After(c.last) {
		c.last = t
	}
}

// Wall returns the wall-clock time without advancing the sequence.
func (c *Clock) Wall() time.Time {
	return c.now().UTC()
}
