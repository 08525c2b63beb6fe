// Package ratelimit implements the per-day usage counter shared by every
// rate-limited feature. A counter stamped with another day reads as unused;
// it is only physically reset by the next Consume.
package ratelimit

import (
	"github.com/phrazzld/scry-quest/internal/domain"
	"github.com/phrazzld/scry-quest/internal/domain/clock"
)

// MayConsume reports whether one more unit is available today. A capacity of
// zero disables the feature on every day.
func MayConsume(c domain.DailyCounter, capacity int, today clock.DayKey) bool {
	if c.Day != today {
		return capacity > 0
	}
	return c.CountUsed < capacity
}

// Consume records one unit used today.
func Consume(c domain.DailyCounter, today clock.DayKey) domain.DailyCounter {
	if c.Day != today {
		return domain.DailyCounter{Day: today, CountUsed: 1}
	}
	return domain.DailyCounter{Day: today, CountUsed: c.CountUsed + 1}
}

// Used returns the units consumed today.
func Used(c domain.DailyCounter, today clock.DayKey) int {
	if c.Day != today {
		return 0
	}
	return c.CountUsed
}

// Remaining returns the units still available today, never negative.
func Remaining(c domain.DailyCounter, capacity int, today clock.DayKey) int {
	return max(capacity-Used(c, today), 0)
}
