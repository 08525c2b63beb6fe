package domain

import (
	"encoding/json"
	"errors"

	"github.com/phrazzld/scry-quest/internal/domain/clock"
	"github.com/phrazzld/scry-quest/internal/domain/leveling"
)

// Decoders in this file never fail. Each persisted field that is missing,
// of the wrong type or out of range is replaced by its documented default,
// and its JSON name is reported so callers can log the recovery.

func decodeObject(raw []byte) (map[string]json.RawMessage, error) {
	if len(raw) == 0 {
		return nil, errors.New("empty record")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errors.New("null record")
	}
	return fields, nil
}

type fieldDecoder struct {
	fields    map[string]json.RawMessage
	fallbacks []string
}

func newFieldDecoder(raw []byte, names ...string) *fieldDecoder {
	fields, err := decodeObject(raw)
	if err != nil {
		return &fieldDecoder{fallbacks: append([]string(nil), names...)}
	}
	return &fieldDecoder{fields: fields}
}

// decodeField reads name into dst when present, well-typed and accepted by
// valid (nil accepts anything). Otherwise dst keeps its default value.
func decodeField[T any](d *fieldDecoder, name string, dst *T, valid func(T) bool) {
	if d.fields == nil {
		return
	}
	raw, ok := d.fields[name]
	if !ok {
		d.fallbacks = append(d.fallbacks, name)
		return
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil || (valid != nil && !valid(v)) {
		d.fallbacks = append(d.fallbacks, name)
		return
	}
	*dst = v
}

func nonNegative(v int) bool { return v >= 0 }

func validDayKey(v clock.DayKey) bool {
	if v.IsZero() {
		return true
	}
	_, err := clock.ParseDayKey(string(v))
	return err == nil
}

// DecodeProgressState parses a persisted progress_state record.
func DecodeProgressState(raw []byte) (ProgressState, []string) {
	def := NewProgressState()
	rec := progressRecord{
		GameType:              GameTypeReading,
		IsFirstRound:          true,
		StageInMilestoneCycle: def.StageInMilestoneCycle,
	}

	d := newFieldDecoder(raw,
		"lessonIndex", "gameType", "isFirstRound", "totalXp", "level",
		"coins", "gems", "stageInMilestoneCycle", "totalStagesCompleted")
	decodeField(d, "lessonIndex", &rec.LessonIndex, nonNegative)
	decodeField(d, "gameType", &rec.GameType, GameType.IsValid)
	decodeField(d, "isFirstRound", &rec.IsFirstRound, nil)
	decodeField(d, "totalXp", &rec.TotalXP, nonNegative)
	decodeField(d, "level", &rec.Level, nonNegative)
	decodeField(d, "coins", &rec.Coins, nonNegative)
	decodeField(d, "gems", &rec.Gems, nonNegative)
	decodeField(d, "stageInMilestoneCycle", &rec.StageInMilestoneCycle, func(v int) bool { return v >= 1 })
	decodeField(d, "totalStagesCompleted", &rec.TotalStagesCompleted, nonNegative)

	return ProgressState{
		Position:              PositionFrom(rec.LessonIndex, rec.GameType, rec.IsFirstRound),
		TotalXP:               rec.TotalXP,
		Level:                 rec.Level,
		Coins:                 rec.Coins,
		Gems:                  rec.Gems,
		StageInMilestoneCycle: rec.StageInMilestoneCycle,
		TotalStagesCompleted:  rec.TotalStagesCompleted,
	}, d.fallbacks
}

// DecodeStreakRecord parses a persisted daily_streak record. The default is
// the empty streak.
func DecodeStreakRecord(raw []byte) (StreakRecord, []string) {
	var rec StreakRecord
	d := newFieldDecoder(raw, "lastCompletionDay", "currentStreakLength", "completedToday")
	decodeField(d, "lastCompletionDay", &rec.LastCompletionDay, validDayKey)
	decodeField(d, "currentStreakLength", &rec.CurrentStreakLength, nonNegative)
	decodeField(d, "completedToday", &rec.CompletedToday, nil)
	return rec, d.fallbacks
}

// DecodeDailyCounter parses a persisted daily counter record. The default is
// an unused counter with no day.
func DecodeDailyCounter(raw []byte) (DailyCounter, []string) {
	var rec DailyCounter
	d := newFieldDecoder(raw, "day", "countUsed")
	decodeField(d, "day", &rec.Day, validDayKey)
	decodeField(d, "countUsed", &rec.CountUsed, nonNegative)
	return rec, d.fallbacks
}

// DecodeLevelingCurve parses a leveling_curve_config record. Missing or
// invalid fields take their value from fallback.
func DecodeLevelingCurve(raw []byte, fallback leveling.Curve) (leveling.Curve, []string) {
	c := fallback
	d := newFieldDecoder(raw, "baseXpPerLevel", "xpGrowthPercentPerLevel", "maxLevel")
	decodeField(d, "baseXpPerLevel", &c.BaseXPPerLevel, func(v int) bool { return v >= 1 })
	decodeField(d, "xpGrowthPercentPerLevel", &c.XPGrowthPercentPerLevel, func(v float64) bool { return v >= 0 })
	decodeField(d, "maxLevel", &c.MaxLevel, func(v int) bool { return v >= 1 && v <= leveling.MaxLevelCeiling })
	return c, d.fallbacks
}
