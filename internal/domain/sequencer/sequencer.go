// Package sequencer moves a learner through the curriculum: lesson, then
// game type, then round. It is pure; the engine persists what it returns.
package sequencer

import (
	"github.com/phrazzld/scry-quest/internal/domain"
	"github.com/phrazzld/scry-quest/internal/domain/leveling"
)

// Milestone names a curriculum boundary crossed by a transition.
type Milestone string

const (
	MilestoneNone               Milestone = ""
	MilestoneRoundComplete      Milestone = "round_complete"
	MilestoneCurriculumComplete Milestone = "curriculum_complete"
)

// Outcome describes what a single Advance awarded and crossed.
type Outcome struct {
	From domain.Position `json:"-"`
	To   domain.Position `json:"-"`

	LessonNumberBefore int `json:"lessonNumberBefore"`
	LessonNumberAfter  int `json:"lessonNumberAfter"`

	XPAwarded    int `json:"xpAwarded"`
	CoinsAwarded int `json:"coinsAwarded"`
	GemsAwarded  int `json:"gemsAwarded"`

	LevelBefore int  `json:"levelBefore"`
	LevelAfter  int  `json:"levelAfter"`
	LevelUp     bool `json:"levelUp"`

	Milestone Milestone `json:"milestone,omitempty"`
	// MilestoneReached is set when the milestone-stage cycle wrapped and paid out gems.
	MilestoneReached bool `json:"milestoneReached"`
}

func checkPosition(pos domain.Position, totalLessons int) error {
	if totalLessons <= 0 {
		return domain.NewInvalidStateError("curriculum has %d lessons", totalLessons)
	}
	if pos == nil {
		return domain.NewInvalidStateError("no curriculum position")
	}
	if pos.Lesson() < 0 || pos.Lesson() >= totalLessons {
		return domain.NewInvalidStateError("lesson index %d outside curriculum of %d lessons", pos.Lesson(), totalLessons)
	}
	if !pos.GameType().IsValid() {
		return domain.NewInvalidStateError("unknown game type %q", pos.GameType())
	}
	return nil
}

// LessonNumber returns the 1-based lesson number shown to the learner. Round 2
// continues numbering after the last round 1 exercise.
func LessonNumber(pos domain.Position, totalLessons int) (int, error) {
	if err := checkPosition(pos, totalLessons); err != nil {
		return 0, err
	}
	switch p := pos.(type) {
	case domain.Round1:
		return p.LessonIndex*domain.ExercisesPerLesson + p.Exercise.Ordinal(), nil
	case domain.Round2:
		return totalLessons*domain.ExercisesPerLesson + p.LessonIndex + 1, nil
	default:
		return 0, domain.NewInvalidStateError("unknown position %T", pos)
	}
}

// Next returns the position after a successful exercise at pos.
func Next(pos domain.Position, totalLessons int) (domain.Position, Milestone, error) {
	if err := checkPosition(pos, totalLessons); err != nil {
		return nil, MilestoneNone, err
	}

	switch p := pos.(type) {
	case domain.Round1:
		switch p.Exercise {
		case domain.GameTypeReading:
			return domain.Round1{LessonIndex: p.LessonIndex, Exercise: domain.GameTypeMatching}, MilestoneNone, nil
		case domain.GameTypeMatching:
			return domain.Round1{LessonIndex: p.LessonIndex, Exercise: domain.GameTypeQuiz}, MilestoneNone, nil
		default:
			if p.LessonIndex+1 < totalLessons {
				return domain.Round1{LessonIndex: p.LessonIndex + 1, Exercise: domain.GameTypeReading}, MilestoneNone, nil
			}
			return domain.Round2{LessonIndex: 0}, MilestoneRoundComplete, nil
		}
	case domain.Round2:
		if p.LessonIndex+1 < totalLessons {
			return domain.Round2{LessonIndex: p.LessonIndex + 1}, MilestoneNone, nil
		}
		return domain.StartPosition(), MilestoneCurriculumComplete, nil
	default:
		return nil, MilestoneNone, domain.NewInvalidStateError("unknown position %T", pos)
	}
}

// Advance applies one completed exercise to state. On error state is
// returned unchanged.
func Advance(state domain.ProgressState, rules Rules, curve leveling.Curve) (domain.ProgressState, Outcome, error) {
	before, err := LessonNumber(state.Position, rules.TotalLessons)
	if err != nil {
		return state, Outcome{}, err
	}
	next, milestone, err := Next(state.Position, rules.TotalLessons)
	if err != nil {
		return state, Outcome{}, err
	}
	after, err := LessonNumber(next, rules.TotalLessons)
	if err != nil {
		return state, Outcome{}, err
	}

	out := Outcome{
		From:               state.Position,
		To:                 next,
		LessonNumberBefore: before,
		LessonNumberAfter:  after,
		XPAwarded:          max(rules.XPPerExercise, 0),
		CoinsAwarded:       max(rules.CoinsPerExercise, 0),
		LevelBefore:        state.Level,
		Milestone:          milestone,
	}

	updated := state
	updated.Position = next
	updated.TotalXP = max(state.TotalXP, 0) + out.XPAwarded
	updated.Coins = max(state.Coins, 0) + out.CoinsAwarded

	progress := curve.LevelFromTotalXP(updated.TotalXP)
	updated.Level = progress.Level
	out.LevelAfter = progress.Level
	out.LevelUp = progress.Level > state.Level

	stages := max(rules.StagesPerMilestone, 1)
	updated.StageInMilestoneCycle = max(state.StageInMilestoneCycle, 1) + 1
	if updated.StageInMilestoneCycle > stages {
		updated.StageInMilestoneCycle = 1
		out.GemsAwarded = max(rules.GemsPerMilestone, 0)
		out.MilestoneReached = true
	}
	updated.Gems = max(state.Gems, 0) + out.GemsAwarded
	updated.TotalStagesCompleted = max(state.TotalStagesCompleted, 0) + 1

	return updated, out, nil
}
