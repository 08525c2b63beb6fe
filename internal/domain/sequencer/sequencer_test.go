package sequencer

import (
	"testing"

	"github.com/phrazzld/scry-quest/internal/domain"
	"github.com/phrazzld/scry-quest/internal/domain/leveling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func r1(idx int, g domain.GameType) domain.Position {
	return domain.Round1{LessonIndex: idx, Exercise: g}
}

func r2(idx int) domain.Position {
	return domain.Round2{LessonIndex: idx}
}

func TestLessonNumber(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		pos      domain.Position
		expected int
	}{
		{"first exercise", r1(0, domain.GameTypeReading), 1},
		{"matching", r1(0, domain.GameTypeMatching), 2},
		{"quiz of third lesson", r1(2, domain.GameTypeQuiz), 9},
		{"round 2 start", r2(0), 31},
		{"round 2 last", r2(9), 40},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			n, err := LessonNumber(tc.pos, 10)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, n)
		})
	}
}

func TestNextFullCycle(t *testing.T) {
	t.Parallel()

	const total = 2
	expected := []struct {
		pos       domain.Position
		milestone Milestone
	}{
		{r1(0, domain.GameTypeMatching), MilestoneNone},
		{r1(0, domain.GameTypeQuiz), MilestoneNone},
		{r1(1, domain.GameTypeReading), MilestoneNone},
		{r1(1, domain.GameTypeMatching), MilestoneNone},
		{r1(1, domain.GameTypeQuiz), MilestoneNone},
		{r2(0), MilestoneRoundComplete},
		{r2(1), MilestoneNone},
		{r1(0, domain.GameTypeReading), MilestoneCurriculumComplete},
	}

	pos := domain.StartPosition()
	for i, step := range expected {
		next, milestone, err := Next(pos, total)
		require.NoError(t, err, "step %d", i+1)
		assert.Equal(t, step.pos, next, "step %d", i+1)
		assert.Equal(t, step.milestone, milestone, "step %d", i+1)
		pos = next
	}
}

func TestNextRejectsInvalidPositions(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		pos   domain.Position
		total int
	}{
		{"nil position", nil, 3},
		{"unknown game type", r1(0, domain.GameType("puzzle")), 3},
		{"lesson past curriculum", r1(3, domain.GameTypeReading), 3},
		{"negative lesson", r2(-1), 3},
		{"empty curriculum", r1(0, domain.GameTypeReading), 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Next(tc.pos, tc.total)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidState)

			var stateErr *domain.InvalidStateError
			assert.ErrorAs(t, err, &stateErr)
		})
	}
}

func TestAdvanceAwardsAndLevels(t *testing.T) {
	t.Parallel()

	rules := Rules{TotalLessons: 2, XPPerExercise: 60, CoinsPerExercise: 5, StagesPerMilestone: 6, GemsPerMilestone: 3}
	curve := leveling.Curve{BaseXPPerLevel: 100, XPGrowthPercentPerLevel: 10, MaxLevel: 10}

	state := domain.NewProgressState()
	state, out, err := Advance(state, rules, curve)
	require.NoError(t, err)

	assert.Equal(t, 60, state.TotalXP)
	assert.Equal(t, 5, state.Coins)
	assert.Equal(t, 0, state.Level)
	assert.False(t, out.LevelUp)
	assert.Equal(t, 1, out.LessonNumberBefore)
	assert.Equal(t, 2, out.LessonNumberAfter)

	state, out, err = Advance(state, rules, curve)
	require.NoError(t, err)
	assert.Equal(t, 120, state.TotalXP)
	assert.Equal(t, 1, state.Level)
	assert.True(t, out.LevelUp)
	assert.Equal(t, 0, out.LevelBefore)
	assert.Equal(t, 1, out.LevelAfter)
	assert.Equal(t, 2, state.TotalStagesCompleted)
}

func TestAdvanceMilestoneRollover(t *testing.T) {
	t.Parallel()

	rules := Rules{TotalLessons: 5, XPPerExercise: 1, CoinsPerExercise: 1, StagesPerMilestone: 6, GemsPerMilestone: 4}
	curve := leveling.DefaultCurve()

	state := domain.NewProgressState()
	for i := 1; i <= 5; i++ {
		var out Outcome
		var err error
		state, out, err = Advance(state, rules, curve)
		require.NoError(t, err)
		assert.Equal(t, i+1, state.StageInMilestoneCycle)
		assert.Zero(t, out.GemsAwarded, "stage %d must not pay gems", i)
		assert.Zero(t, state.Gems)
	}

	state, out, err := Advance(state, rules, curve)
	require.NoError(t, err)
	assert.Equal(t, 1, state.StageInMilestoneCycle)
	assert.Equal(t, 4, state.Gems)
	assert.Equal(t, 4, out.GemsAwarded)
	assert.True(t, out.MilestoneReached)
	assert.Equal(t, 6, state.TotalStagesCompleted)
}

func TestAdvanceStageAboveCycleRollsOver(t *testing.T) {
	t.Parallel()

	rules := NewDefaultRules()
	state := domain.NewProgressState()
	state.StageInMilestoneCycle = 9

	state, out, err := Advance(state, rules, leveling.DefaultCurve())
	require.NoError(t, err)
	assert.Equal(t, 1, state.StageInMilestoneCycle)
	assert.True(t, out.MilestoneReached)
}

func TestAdvanceInvalidLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	state := domain.NewProgressState()
	state.Position = r1(7, domain.GameTypeQuiz)
	state.TotalXP = 40

	got, out, err := Advance(state, Rules{TotalLessons: 3, StagesPerMilestone: 6}, leveling.DefaultCurve())
	require.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, state, got)
	assert.Equal(t, Outcome{}, out)
}

func TestRulesValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, NewDefaultRules().Validate())
	assert.Error(t, Rules{TotalLessons: 0, StagesPerMilestone: 6}.Validate())
	assert.Error(t, Rules{TotalLessons: 3, StagesPerMilestone: 0}.Validate())
	assert.Error(t, Rules{TotalLessons: 3, StagesPerMilestone: 6, XPPerExercise: -1}.Validate())
}
