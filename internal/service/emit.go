package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-quest/internal/domain/clock"
	"github.com/phrazzld/scry-quest/internal/domain/sequencer"
	"github.com/phrazzld/scry-quest/internal/domain/streak"
	"github.com/phrazzld/scry-quest/internal/events"
)

// emit publishes one event. The write it describes is already committed, so
// failures are logged and swallowed.
func (e *Engine) emit(ctx context.Context, userID uuid.UUID, eventType events.EventType, payload any) {
	log := e.log(ctx, userID)
	event, err := events.NewProgressEvent(eventType, userID, payload, e.calendar.Now())
	if err != nil {
		log.ErrorContext(ctx, "failed to create progress event",
			slog.String("event_type", string(eventType)),
			slog.String("error", err.Error()))
		return
	}
	if err := e.emitter.EmitEvent(ctx, event); err != nil {
		log.ErrorContext(ctx, "failed to emit progress event",
			slog.String("event_type", string(eventType)),
			slog.String("event_id", event.ID.String()),
			slog.String("error", err.Error()))
	}
}

func (e *Engine) emitAdvance(ctx context.Context, userID uuid.UUID, result *AdvanceResult, today clock.DayKey) {
	if result.LevelUp {
		e.emit(ctx, userID, events.EventLevelUp, events.LevelUpPayload{
			LevelBefore: result.LevelBefore,
			LevelAfter:  result.LevelAfter,
			TotalXP:     result.State.TotalXP,
		})
	}

	switch result.Milestone {
	case sequencer.MilestoneRoundComplete:
		e.emit(ctx, userID, events.EventRoundComplete, events.CurriculumPayload{
			LessonNumber: result.LessonNumberBefore,
		})
	case sequencer.MilestoneCurriculumComplete:
		e.emit(ctx, userID, events.EventCurriculumComplete, events.CurriculumPayload{
			LessonNumber: result.LessonNumberBefore,
		})
	case sequencer.MilestoneNone:
	}

	if result.MilestoneReached {
		e.emit(ctx, userID, events.EventMilestoneReached, events.MilestonePayload{
			GemsAwarded:          result.GemsAwarded,
			TotalStagesCompleted: result.State.TotalStagesCompleted,
		})
	}

	e.emitFirstCompletion(ctx, userID, result.Streak, today)
}

func (e *Engine) emitFirstCompletion(ctx context.Context, userID uuid.UUID, completion streak.Completion, today clock.DayKey) {
	if !completion.IsFirstToday {
		return
	}
	e.emit(ctx, userID, events.EventFirstCompletionToday, events.StreakPayload{
		Day:    today.String(),
		Streak: completion.NewStreak,
	})
}
