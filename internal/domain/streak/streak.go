// Package streak implements the daily completion streak as pure transitions
// over domain.StreakRecord. Callers supply today and yesterday; persistence
// is the caller's job, and reads that need a write say so in their result.
package streak

import (
	"github.com/phrazzld/scry-quest/internal/domain"
	"github.com/phrazzld/scry-quest/internal/domain/clock"
)

// Read is the result of inspecting a streak. When Mutation is non-nil the
// caller must persist it: the streak was found broken and has been cleared.
type Read struct {
	Value    int
	Mutation *domain.StreakRecord
}

// Completion is the result of recording a qualifying completion.
type Completion struct {
	IsFirstToday bool `json:"isFirstToday"`
	NewStreak    int  `json:"newStreak"`
}

// Normalize returns rec as seen on today: the completed-today flag only
// holds while the last completion is today.
func Normalize(rec domain.StreakRecord, today clock.DayKey) domain.StreakRecord {
	if rec.LastCompletionDay != today {
		rec.CompletedToday = false
	}
	return rec
}

// Current returns the live streak length. A record whose last completion is
// neither today nor yesterday is broken; the cleared record is returned as
// the mutation to persist.
func Current(rec domain.StreakRecord, today, yesterday clock.DayKey) Read {
	if !rec.LastCompletionDay.IsZero() &&
		(rec.LastCompletionDay == today || rec.LastCompletionDay == yesterday) {
		return Read{Value: rec.CurrentStreakLength}
	}
	cleared := domain.StreakRecord{}
	if rec == cleared {
		return Read{Value: 0}
	}
	return Read{Value: 0, Mutation: &cleared}
}

// RecordCompletion applies one completion on today. Repeats on the same day
// are idempotent and return the unchanged record.
func RecordCompletion(rec domain.StreakRecord, today, yesterday clock.DayKey) (Completion, domain.StreakRecord) {
	rec = Normalize(rec, today)
	if rec.CompletedToday {
		return Completion{IsFirstToday: false, NewStreak: rec.CurrentStreakLength}, rec
	}

	var next int
	switch rec.LastCompletionDay {
	case yesterday:
		next = rec.CurrentStreakLength + 1
	case today:
		// Inconsistent record: completed today but the flag was lost.
		next = max(rec.CurrentStreakLength, 1)
	default:
		next = 1
	}

	updated := domain.StreakRecord{
		LastCompletionDay:   today,
		CurrentStreakLength: next,
		CompletedToday:      true,
	}
	return Completion{IsFirstToday: true, NewStreak: next}, updated
}
