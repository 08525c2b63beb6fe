package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-quest/internal/domain"
	"github.com/phrazzld/scry-quest/internal/domain/clock"
	"github.com/phrazzld/scry-quest/internal/domain/leveling"
	"github.com/phrazzld/scry-quest/internal/domain/sequencer"
	"github.com/phrazzld/scry-quest/internal/domain/streak"
	"github.com/phrazzld/scry-quest/internal/events"
	"github.com/phrazzld/scry-quest/internal/platform/logger"
	"github.com/phrazzld/scry-quest/internal/store"
)

// DefaultSwapRetries bounds TryConsume when Settings.SwapRetries is unset.
const DefaultSwapRetries = 5

// Settings holds the rules the engine applies.
type Settings struct {
	Rules sequencer.Rules
	// Capacities maps each rate-limited feature to its per-day units.
	Capacities map[domain.Feature]int
	// Curve is used when a learner has no leveling_curve_config record.
	Curve       leveling.Curve
	SwapRetries int
}

// Engine orchestrates progression for any number of learners.
type Engine struct {
	repo       *store.Repository
	calendar   clock.Calendar
	rules      sequencer.Rules
	capacities map[domain.Feature]int
	curve      leveling.Curve
	retries    int
	emitter    events.EventEmitter
	logger     *slog.Logger
}

// NewEngine creates an Engine.
// It returns an error if the repository is nil or the rules are invalid.
// A nil emitter discards events; a nil logger uses the slog default.
func NewEngine(
	repo *store.Repository,
	calendar clock.Calendar,
	settings Settings,
	emitter events.EventEmitter,
	log *slog.Logger,
) (*Engine, error) {
	if repo == nil {
		return nil, &EngineError{Operation: "create_engine", Message: "repository cannot be nil"}
	}
	if err := settings.Rules.Validate(); err != nil {
		return nil, NewEngineError("create_engine", "invalid rules", err)
	}
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "progression_engine"))
	if emitter == nil {
		emitter = events.NewInMemoryEventEmitter(log)
	}

	curve, clamped := settings.Curve.Normalize()
	if len(clamped) > 0 {
		log.Warn("configured leveling curve out of range, clamping",
			slog.Any("fields", clamped))
	}

	capacities := make(map[domain.Feature]int, len(settings.Capacities))
	for feature, capacity := range settings.Capacities {
		if !feature.IsValid() {
			return nil, NewEngineError("create_engine", "invalid capacity", domain.ErrUnknownFeature)
		}
		capacities[feature] = max(capacity, 0)
	}

	retries := settings.SwapRetries
	if retries <= 0 {
		retries = DefaultSwapRetries
	}

	return &Engine{
		repo:       repo,
		calendar:   calendar,
		rules:      settings.Rules,
		capacities: capacities,
		curve:      curve,
		retries:    retries,
		emitter:    emitter,
		logger:     log,
	}, nil
}

func (e *Engine) log(ctx context.Context, userID uuid.UUID) *slog.Logger {
	return logger.FromContextOrDefault(ctx, e.logger).With(slog.String("user_id", userID.String()))
}

// activeCurve returns the learner's stored curve, or the configured one,
// clamped into range.
func (e *Engine) activeCurve(ctx context.Context, userID uuid.UUID) (leveling.Curve, error) {
	snap, err := e.repo.Curve(ctx, userID, e.curve)
	if err != nil {
		return leveling.Curve{}, err
	}
	curve, clamped := snap.Value.Normalize()
	if len(clamped) > 0 {
		e.log(ctx, userID).WarnContext(ctx, "stored leveling curve out of range, clamping",
			slog.Any("fields", clamped))
	}
	return curve, nil
}

// AdvanceResult is what a single successful exercise produced.
type AdvanceResult struct {
	sequencer.Outcome
	State  domain.ProgressState `json:"state"`
	Streak streak.Completion    `json:"streak"`
}

// Advance records one successfully completed exercise: it moves the learner
// to the next position, pays rewards, recomputes the level, advances the
// milestone cycle and records the day's completion, all in one write.
func (e *Engine) Advance(ctx context.Context, userID uuid.UUID) (*AdvanceResult, error) {
	log := e.log(ctx, userID)

	progress, err := e.repo.Progress(ctx, userID)
	if err != nil {
		return nil, NewEngineError("advance", "failed to load progress", err)
	}
	streakSnap, err := e.repo.Streak(ctx, userID)
	if err != nil {
		return nil, NewEngineError("advance", "failed to load streak", err)
	}
	curve, err := e.activeCurve(ctx, userID)
	if err != nil {
		return nil, NewEngineError("advance", "failed to load leveling curve", err)
	}

	state, outcome, err := sequencer.Advance(progress.Value, e.rules, curve)
	if err != nil {
		log.WarnContext(ctx, "advance rejected", slog.String("error", err.Error()))
		return nil, NewEngineError("advance", "cannot advance from stored position", err)
	}

	today, yesterday := e.calendar.Days()
	completion, record := streak.RecordCompletion(streakSnap.Value, today, yesterday)

	progressEntry, err := store.ProgressEntry(state)
	if err != nil {
		return nil, NewEngineError("advance", "failed to encode progress", err)
	}
	streakEntry, err := store.StreakEntry(record)
	if err != nil {
		return nil, NewEngineError("advance", "failed to encode streak", err)
	}
	if err := e.repo.Save(ctx, userID, progressEntry, streakEntry); err != nil {
		log.ErrorContext(ctx, "failed to commit advance", slog.String("error", err.Error()))
		return nil, NewEngineError("advance", "failed to save progress", err)
	}

	result := &AdvanceResult{Outcome: outcome, State: state, Streak: completion}
	log.InfoContext(ctx, "exercise completed",
		slog.Int("lesson_number_before", outcome.LessonNumberBefore),
		slog.Int("lesson_number_after", outcome.LessonNumberAfter),
		slog.Int("total_xp", state.TotalXP),
		slog.Int("level", state.Level),
		slog.Bool("level_up", outcome.LevelUp),
		slog.String("milestone", string(outcome.Milestone)),
		slog.Int("streak", completion.NewStreak))

	e.emitAdvance(ctx, userID, result, today)
	return result, nil
}

// LevelFromTotalXP looks xp up on the learner's active curve.
func (e *Engine) LevelFromTotalXP(ctx context.Context, userID uuid.UUID, xp int) (leveling.Progress, error) {
	curve, err := e.activeCurve(ctx, userID)
	if err != nil {
		return leveling.Progress{}, NewEngineError("level_lookup", "failed to load leveling curve", err)
	}
	return curve.LevelFromTotalXP(xp), nil
}

// SetCurve stores a learner-specific leveling curve after validating it.
func (e *Engine) SetCurve(ctx context.Context, userID uuid.UUID, curve leveling.Curve) error {
	if err := curve.Validate(); err != nil {
		return NewEngineError("set_curve", "invalid leveling curve", err)
	}
	if err := e.repo.SaveCurve(ctx, userID, curve); err != nil {
		return NewEngineError("set_curve", "failed to save leveling curve", err)
	}
	e.log(ctx, userID).InfoContext(ctx, "leveling curve updated",
		slog.Int("base_xp_per_level", curve.BaseXPPerLevel),
		slog.Float64("xp_growth_percent_per_level", curve.XPGrowthPercentPerLevel),
		slog.Int("max_level", curve.MaxLevel))
	return nil
}

// Restart resets progress, streak and both daily counters in one write.
// A stored leveling curve is kept.
func (e *Engine) Restart(ctx context.Context, userID uuid.UUID) error {
	if err := e.repo.Reset(ctx, userID); err != nil {
		return NewEngineError("restart", "failed to reset records", err)
	}
	e.log(ctx, userID).InfoContext(ctx, "progress restarted")
	return nil
}
