// Package clock converts instants into calendar-day keys in the learner's
// local time zone. All day-granular logic (streaks, daily limits) compares
// DayKey values produced here rather than raw timestamps.
package clock

import (
	"errors"
	"time"
)

// DayKeyLayout is the layout used to render a DayKey.
const DayKeyLayout = "2006-01-02"

// ErrInvalidDayKey is returned when a string is not a valid day key.
var ErrInvalidDayKey = errors.New("invalid day key")

// DayKey identifies a calendar day in a specific time zone, e.g. "2024-03-09".
// The zero value is the empty key and means "no day".
type DayKey string

// IsZero reports whether the key is empty.
func (d DayKey) IsZero() bool {
	return d == ""
}

// String implements fmt.Stringer.
func (d DayKey) String() string {
	return string(d)
}

// ParseDayKey validates s and returns it as a DayKey.
func ParseDayKey(s string) (DayKey, error) {
	if _, err := time.Parse(DayKeyLayout, s); err != nil {
		return "", ErrInvalidDayKey
	}
	return DayKey(s), nil
}

// KeyOf returns the day key of t as observed in loc.
func KeyOf(t time.Time, loc *time.Location) DayKey {
	if loc == nil {
		loc = time.UTC
	}
	return DayKey(t.In(loc).Format(DayKeyLayout))
}

// Clock provides the current instant.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Calendar derives "today" and "yesterday" from a Clock in a fixed location.
// It is re-read on every call; nothing is cached between operations.
type Calendar struct {
	clock Clock
	loc   *time.Location
}

// NewCalendar creates a Calendar. A nil clock uses the system clock and a
// nil location uses UTC.
func NewCalendar(c Clock, loc *time.Location) Calendar {
	if c == nil {
		c = SystemClock{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{clock: c, loc: loc}
}

// Today returns the current day key.
func (c Calendar) Today() DayKey {
	return KeyOf(c.clock.Now(), c.loc)
}

// Days returns today and yesterday read from a single instant, so that a
// caller never observes a pair straddling midnight.
func (c Calendar) Days() (today, yesterday DayKey) {
	now := c.clock.Now().In(c.loc)
	y, m, d := now.Date()
	// Step back by calendar date, not 24h, so DST transitions are harmless.
	prev := time.Date(y, m, d-1, 12, 0, 0, 0, c.loc)
	return KeyOf(now, c.loc), KeyOf(prev, c.loc)
}

// Now returns the current instant in the calendar's time zone.
func (c Calendar) Now() time.Time {
	return c.clock.Now().In(c.loc)
}
