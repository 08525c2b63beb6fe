package domain

import (
	"encoding/json"
	"fmt"

	"github.com/phrazzld/scry-quest/internal/domain/clock"
)

// ProgressState is the learner's single owned aggregate. It is mutated only
// by the sequencer and always persisted as a whole.
type ProgressState struct {
	Position              Position
	TotalXP               int
	Level                 int // derived from TotalXP, cached for display
	Coins                 int
	Gems                  int
	StageInMilestoneCycle int
	TotalStagesCompleted  int
}

// progressRecord is the flat persisted shape of ProgressState.
type progressRecord struct {
	LessonIndex           int      `json:"lessonIndex"`
	GameType              GameType `json:"gameType"`
	IsFirstRound          bool     `json:"isFirstRound"`
	TotalXP               int      `json:"totalXp"`
	Level                 int      `json:"level"`
	Coins                 int      `json:"coins"`
	Gems                  int      `json:"gems"`
	StageInMilestoneCycle int      `json:"stageInMilestoneCycle"`
	TotalStagesCompleted  int      `json:"totalStagesCompleted"`
}

// NewProgressState returns the state of a learner on first run.
func NewProgressState() ProgressState {
	return ProgressState{
		Position:              StartPosition(),
		StageInMilestoneCycle: 1,
	}
}

// MarshalJSON writes the flat record format.
func (s ProgressState) MarshalJSON() ([]byte, error) {
	pos := s.Position
	if pos == nil {
		pos = StartPosition()
	}
	return json.Marshal(progressRecord{
		LessonIndex:           pos.Lesson(),
		GameType:              pos.GameType(),
		IsFirstRound:          pos.FirstRound(),
		TotalXP:               s.TotalXP,
		Level:                 s.Level,
		Coins:                 s.Coins,
		Gems:                  s.Gems,
		StageInMilestoneCycle: s.StageInMilestoneCycle,
		TotalStagesCompleted:  s.TotalStagesCompleted,
	})
}

// UnmarshalJSON reads the flat record format with per-field fallback.
func (s *ProgressState) UnmarshalJSON(data []byte) error {
	if _, err := decodeObject(data); err != nil {
		return fmt.Errorf("%w: progress state: %v", ErrMalformedRecord, err)
	}
	*s, _ = DecodeProgressState(data)
	return nil
}

// StreakRecord is the persisted daily streak singleton.
type StreakRecord struct {
	LastCompletionDay   clock.DayKey `json:"lastCompletionDay"`
	CurrentStreakLength int          `json:"currentStreakLength"`
	CompletedToday      bool         `json:"completedToday"`
}

// DailyCounter is one rate-limited feature's usage for a day.
type DailyCounter struct {
	Day       clock.DayKey `json:"day"`
	CountUsed int          `json:"countUsed"`
}

// Feature names a rate-limited feature with its own DailyCounter.
type Feature string

// Rate-limited features.
const (
	FeatureLesson Feature = "lesson"
	FeatureArena  Feature = "arena"
)

// IsValid reports whether f is a known feature.
func (f Feature) IsValid() bool {
	return f == FeatureLesson || f == FeatureArena
}

// Tier is the learner's subscription tier.
type Tier int

// Tiers above TierFree are not rate limited.
const (
	TierFree Tier = iota
	TierPlus
	TierPremium
)

// Unlimited reports whether the tier bypasses daily limits.
func (t Tier) Unlimited() bool {
	return t > TierFree
}
