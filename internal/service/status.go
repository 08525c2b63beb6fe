package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-quest/internal/domain"
	"github.com/phrazzld/scry-quest/internal/domain/leveling"
	"github.com/phrazzld/scry-quest/internal/domain/sequencer"
)

// Status is a read model of everything the presentation layer shows.
type Status struct {
	UserID       uuid.UUID       `json:"userId"`
	LessonNumber int             `json:"lessonNumber"`
	LessonIndex  int             `json:"lessonIndex"`
	GameType     domain.GameType `json:"gameType"`
	IsFirstRound bool            `json:"isFirstRound"`

	TotalXP int               `json:"totalXp"`
	Level   leveling.Progress `json:"level"`
	Coins   int               `json:"coins"`
	Gems    int               `json:"gems"`

	StageInMilestoneCycle int `json:"stageInMilestoneCycle"`
	StagesPerMilestone    int `json:"stagesPerMilestone"`
	TotalStagesCompleted  int `json:"totalStagesCompleted"`

	Streak int `json:"streak"`
	// Remaining units today; -1 means unlimited.
	LessonsRemaining    int `json:"lessonsRemaining"`
	ArenaGamesRemaining int `json:"arenaGamesRemaining"`
}

// Status assembles the learner's current standing. Reading the streak may
// clear a broken one, as CurrentStreak does.
func (e *Engine) Status(ctx context.Context, userID uuid.UUID, tier domain.Tier) (*Status, error) {
	progress, err := e.repo.Progress(ctx, userID)
	if err != nil {
		return nil, NewEngineError("status", "failed to load progress", err)
	}
	state := progress.Value

	lessonNumber, err := sequencer.LessonNumber(state.Position, e.rules.TotalLessons)
	if err != nil {
		return nil, NewEngineError("status", "cannot number stored position", err)
	}
	level, err := e.LevelFromTotalXP(ctx, userID, state.TotalXP)
	if err != nil {
		return nil, err
	}
	current, err := e.CurrentStreak(ctx, userID)
	if err != nil {
		return nil, err
	}
	lessons, err := e.Remaining(ctx, userID, domain.FeatureLesson, tier)
	if err != nil {
		return nil, err
	}
	arena, err := e.Remaining(ctx, userID, domain.FeatureArena, tier)
	if err != nil {
		return nil, err
	}

	return &Status{
		UserID:                userID,
		LessonNumber:          lessonNumber,
		LessonIndex:           state.Position.Lesson(),
		GameType:              state.Position.GameType(),
		IsFirstRound:          state.Position.FirstRound(),
		TotalXP:               state.TotalXP,
		Level:                 level,
		Coins:                 state.Coins,
		Gems:                  state.Gems,
		StageInMilestoneCycle: state.StageInMilestoneCycle,
		StagesPerMilestone:    e.rules.StagesPerMilestone,
		TotalStagesCompleted:  state.TotalStagesCompleted,
		Streak:                current,
		LessonsRemaining:      lessons,
		ArenaGamesRemaining:   arena,
	}, nil
}
