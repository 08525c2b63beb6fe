package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-quest/internal/domain/streak"
	"github.com/phrazzld/scry-quest/internal/store"
)

// CurrentStreak returns the learner's streak as of today. A streak that was
// broken since the last completion is cleared in the store on the way.
func (e *Engine) CurrentStreak(ctx context.Context, userID uuid.UUID) (int, error) {
	snap, err := e.repo.Streak(ctx, userID)
	if err != nil {
		return 0, NewEngineError("current_streak", "failed to load streak", err)
	}

	today, yesterday := e.calendar.Days()
	read := streak.Current(snap.Value, today, yesterday)
	if read.Mutation == nil {
		return read.Value, nil
	}

	entry, err := store.StreakEntry(*read.Mutation)
	if err != nil {
		return 0, NewEngineError("current_streak", "failed to encode streak", err)
	}
	if err := e.repo.Save(ctx, userID, entry); err != nil {
		return 0, NewEngineError("current_streak", "failed to clear broken streak", err)
	}
	e.log(ctx, userID).InfoContext(ctx, "streak broken, record cleared",
		slog.String("last_completion_day", snap.Value.LastCompletionDay.String()),
		slog.Int("previous_length", snap.Value.CurrentStreakLength))
	return read.Value, nil
}

// RecordCompletion marks today as completed without moving the learner
// through the curriculum. Repeated calls on the same day change nothing.
func (e *Engine) RecordCompletion(ctx context.Context, userID uuid.UUID) (streak.Completion, error) {
	snap, err := e.repo.Streak(ctx, userID)
	if err != nil {
		return streak.Completion{}, NewEngineError("record_completion", "failed to load streak", err)
	}

	today, yesterday := e.calendar.Days()
	completion, record := streak.RecordCompletion(snap.Value, today, yesterday)
	if !completion.IsFirstToday {
		return completion, nil
	}

	entry, err := store.StreakEntry(record)
	if err != nil {
		return streak.Completion{}, NewEngineError("record_completion", "failed to encode streak", err)
	}
	if err := e.repo.Save(ctx, userID, entry); err != nil {
		return streak.Completion{}, NewEngineError("record_completion", "failed to save streak", err)
	}
	e.log(ctx, userID).InfoContext(ctx, "daily completion recorded",
		slog.String("day", today.String()),
		slog.Int("streak", completion.NewStreak))

	e.emitFirstCompletion(ctx, userID, completion, today)
	return completion, nil
}
