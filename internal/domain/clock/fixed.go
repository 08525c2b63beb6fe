package clock

import (
	"sync"
	"time"
)

// FixedClock is a manually driven Clock for tests and simulations.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock returns a clock frozen at now.
func NewFixedClock(now time.Time) *FixedClock {
	return &FixedClock{now: now}
}

// Now implements Clock.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AddDays advances the clock by n calendar days.
func (c *FixedClock) AddDays(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.AddDate(0, 0, n)
}
