package domain

import (
	"encoding/json"
	"testing"

	"github.com/phrazzld/scry-quest/internal/domain/clock"
	"github.com/phrazzld/scry-quest/internal/domain/leveling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressStateRoundTrip(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		state ProgressState
		json  string
	}{
		{
			name: "round 1 quiz",
			state: ProgressState{
				Position:              Round1{LessonIndex: 4, Exercise: GameTypeQuiz},
				TotalXP:               420,
				Level:                 3,
				Coins:                 85,
				Gems:                  10,
				StageInMilestoneCycle: 5,
				TotalStagesCompleted:  14,
			},
			json: `{"lessonIndex":4,"gameType":"quiz","isFirstRound":true,"totalXp":420,"level":3,` +
				`"coins":85,"gems":10,"stageInMilestoneCycle":5,"totalStagesCompleted":14}`,
		},
		{
			name:  "round 2 always stores reading",
			state: ProgressState{Position: Round2{LessonIndex: 2}, StageInMilestoneCycle: 1},
			json: `{"lessonIndex":2,"gameType":"reading","isFirstRound":false,"totalXp":0,"level":0,` +
				`"coins":0,"gems":0,"stageInMilestoneCycle":1,"totalStagesCompleted":0}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.state)
			require.NoError(t, err)
			assert.JSONEq(t, tc.json, string(data))

			var decoded ProgressState
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, tc.state, decoded)
		})
	}
}

func TestDecodeProgressStateFallsBackPerField(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"lessonIndex":-2,"gameType":"boss-fight","isFirstRound":"yes","totalXp":350,` +
		`"coins":12.5,"gems":3,"stageInMilestoneCycle":0}`)

	state, fallbacks := DecodeProgressState(raw)

	assert.Equal(t, Round1{LessonIndex: 0, Exercise: GameTypeReading}, state.Position)
	assert.Equal(t, 350, state.TotalXP)
	assert.Equal(t, 0, state.Coins)
	assert.Equal(t, 3, state.Gems)
	assert.Equal(t, 1, state.StageInMilestoneCycle)
	assert.ElementsMatch(t, []string{
		"lessonIndex", "gameType", "isFirstRound", "level", "coins",
		"stageInMilestoneCycle", "totalStagesCompleted",
	}, fallbacks)
}

func TestDecodeProgressStateUnreadable(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "null", "not json", `[1,2]`} {
		state, fallbacks := DecodeProgressState([]byte(raw))
		assert.Equal(t, NewProgressState(), state, "input %q", raw)
		assert.Len(t, fallbacks, 9, "input %q", raw)
	}

	var s ProgressState
	assert.ErrorIs(t, json.Unmarshal([]byte(`"nope"`), &s), ErrMalformedRecord)
}

func TestDecodeStreakRecord(t *testing.T) {
	t.Parallel()

	rec, fallbacks := DecodeStreakRecord([]byte(`{"lastCompletionDay":"2024-05-01","currentStreakLength":4,"completedToday":true}`))
	assert.Equal(t, StreakRecord{LastCompletionDay: "2024-05-01", CurrentStreakLength: 4, CompletedToday: true}, rec)
	assert.Empty(t, fallbacks)

	rec, fallbacks = DecodeStreakRecord([]byte(`{"lastCompletionDay":"May 1st","currentStreakLength":-1}`))
	assert.Equal(t, StreakRecord{}, rec)
	assert.ElementsMatch(t, []string{"lastCompletionDay", "currentStreakLength", "completedToday"}, fallbacks)

	rec, _ = DecodeStreakRecord([]byte(`{"lastCompletionDay":"","currentStreakLength":0,"completedToday":false}`))
	assert.Equal(t, StreakRecord{}, rec, "an empty day is a valid cleared record")
}

func TestDecodeDailyCounter(t *testing.T) {
	t.Parallel()

	rec, fallbacks := DecodeDailyCounter([]byte(`{"day":"2024-05-01","countUsed":2}`))
	assert.Equal(t, DailyCounter{Day: clock.DayKey("2024-05-01"), CountUsed: 2}, rec)
	assert.Empty(t, fallbacks)

	rec, fallbacks = DecodeDailyCounter([]byte(`{"day":20240501,"countUsed":"two"}`))
	assert.Equal(t, DailyCounter{}, rec)
	assert.Len(t, fallbacks, 2)
}

func TestDecodeLevelingCurve(t *testing.T) {
	t.Parallel()
	fallback := leveling.DefaultCurve()

	c, fallbacks := DecodeLevelingCurve([]byte(`{"baseXpPerLevel":250,"xpGrowthPercentPerLevel":7.5,"maxLevel":80}`), fallback)
	assert.Equal(t, leveling.Curve{BaseXPPerLevel: 250, XPGrowthPercentPerLevel: 7.5, MaxLevel: 80}, c)
	assert.Empty(t, fallbacks)

	c, fallbacks = DecodeLevelingCurve([]byte(`{"baseXpPerLevel":250,"xpGrowthPercentPerLevel":-3,"maxLevel":0}`), fallback)
	assert.Equal(t, 250, c.BaseXPPerLevel)
	assert.Equal(t, fallback.XPGrowthPercentPerLevel, c.XPGrowthPercentPerLevel)
	assert.Equal(t, fallback.MaxLevel, c.MaxLevel)
	assert.ElementsMatch(t, []string{"xpGrowthPercentPerLevel", "maxLevel"}, fallbacks)
}
