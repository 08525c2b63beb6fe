package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyOf(t *testing.T) {
	t.Parallel()

	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	instant := time.Date(2024, 3, 9, 20, 30, 0, 0, time.UTC)

	assert.Equal(t, DayKey("2024-03-09"), KeyOf(instant, time.UTC))
	assert.Equal(t, DayKey("2024-03-10"), KeyOf(instant, tokyo), "local zone decides the calendar day")
	assert.Equal(t, DayKey("2024-03-09"), KeyOf(instant, nil), "nil location falls back to UTC")
}

func TestParseDayKey(t *testing.T) {
	t.Parallel()

	key, err := ParseDayKey("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, DayKey("2024-02-29"), key)

	for _, bad := range []string{"", "2023-02-29", "24-1-1", "yesterday"} {
		_, err := ParseDayKey(bad)
		assert.ErrorIs(t, err, ErrInvalidDayKey, "input %q", bad)
	}
}

func TestCalendarDays(t *testing.T) {
	t.Parallel()

	fc := NewFixedClock(time.Date(2024, 1, 1, 0, 30, 0, 0, time.UTC))
	cal := NewCalendar(fc, time.UTC)

	today, yesterday := cal.Days()
	assert.Equal(t, DayKey("2024-01-01"), today)
	assert.Equal(t, DayKey("2023-12-31"), yesterday)
	assert.Equal(t, today, cal.Today())

	fc.AddDays(1)
	today, yesterday = cal.Days()
	assert.Equal(t, DayKey("2024-01-02"), today)
	assert.Equal(t, DayKey("2024-01-01"), yesterday)
}

func TestCalendarDaysAcrossDST(t *testing.T) {
	t.Parallel()

	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 2024-11-03 is a 25-hour day in New York.
	fc := NewFixedClock(time.Date(2024, 11, 4, 0, 30, 0, 0, ny))
	cal := NewCalendar(fc, ny)

	today, yesterday := cal.Days()
	assert.Equal(t, DayKey("2024-11-04"), today)
	assert.Equal(t, DayKey("2024-11-03"), yesterday)
}
