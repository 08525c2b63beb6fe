package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-quest/internal/domain"
	"github.com/phrazzld/scry-quest/internal/domain/leveling"
)

// Snapshot is a decoded record together with the bytes it was read from.
type Snapshot[T any] struct {
	Value T
	// Raw is the stored payload, nil when the record was absent. It is the
	// expected value for a later CompareAndSwap.
	Raw []byte
	// Fallbacks names the fields that were missing or invalid and took defaults.
	Fallbacks []string
}

// Exists reports whether the record was present in the store.
func (s Snapshot[T]) Exists() bool {
	return s.Raw != nil
}

// Repository gives typed access to a user's records on top of a RecordStore.
// Absent records read as their initial values; malformed ones are decoded
// field by field and logged.
type Repository struct {
	records RecordStore
	logger  *slog.Logger
}

// NewRepository creates a Repository over records.
// If logger is nil, a default logger will be used.
func NewRepository(records RecordStore, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		records: records,
		logger:  logger.With(slog.String("component", "record_repository")),
	}
}

// Records returns the underlying store.
func (r *Repository) Records() RecordStore {
	return r.records
}

func load[T any](
	ctx context.Context,
	r *Repository,
	userID uuid.UUID,
	key Key,
	initial T,
	decode func([]byte) (T, []string),
) (Snapshot[T], error) {
	raw, err := r.records.Get(ctx, userID, key)
	if errors.Is(err, ErrNotFound) {
		return Snapshot[T]{Value: initial}, nil
	}
	if err != nil {
		return Snapshot[T]{}, fmt.Errorf("failed to load %s: %w", key, err)
	}

	value, fallbacks := decode(raw)
	if len(fallbacks) > 0 {
		r.logger.WarnContext(ctx, "malformed record fields replaced with defaults",
			slog.String("user_id", userID.String()),
			slog.String("key", key.String()),
			slog.Any("fields", fallbacks))
	}
	return Snapshot[T]{Value: value, Raw: raw, Fallbacks: fallbacks}, nil
}

// Progress loads the progress_state record.
func (r *Repository) Progress(ctx context.Context, userID uuid.UUID) (Snapshot[domain.ProgressState], error) {
	return load(ctx, r, userID, KeyProgressState, domain.NewProgressState(), domain.DecodeProgressState)
}

// Streak loads the daily_streak record.
func (r *Repository) Streak(ctx context.Context, userID uuid.UUID) (Snapshot[domain.StreakRecord], error) {
	return load(ctx, r, userID, KeyDailyStreak, domain.StreakRecord{}, domain.DecodeStreakRecord)
}

// Counter loads the daily counter of feature.
func (r *Repository) Counter(ctx context.Context, userID uuid.UUID, feature domain.Feature) (Snapshot[domain.DailyCounter], error) {
	key, err := CounterKey(feature)
	if err != nil {
		return Snapshot[domain.DailyCounter]{}, err
	}
	return load(ctx, r, userID, key, domain.DailyCounter{}, domain.DecodeDailyCounter)
}

// Curve loads the leveling_curve_config record. Missing fields, or a missing
// record, take their values from fallback.
func (r *Repository) Curve(ctx context.Context, userID uuid.UUID, fallback leveling.Curve) (Snapshot[leveling.Curve], error) {
	return load(ctx, r, userID, KeyLevelingCurveConfig, fallback, func(raw []byte) (leveling.Curve, []string) {
		return domain.DecodeLevelingCurve(raw, fallback)
	})
}

// Save writes entries in one atomic batch.
func (r *Repository) Save(ctx context.Context, userID uuid.UUID, entries ...Entry) error {
	if err := ValidateEntries(entries); err != nil {
		return err
	}
	if err := r.records.PutMany(ctx, userID, entries); err != nil {
		return fmt.Errorf("failed to save records: %w", err)
	}
	return nil
}

// SaveCurve stores a user-specific leveling curve.
func (r *Repository) SaveCurve(ctx context.Context, userID uuid.UUID, c leveling.Curve) error {
	entry, err := encodeEntry(KeyLevelingCurveConfig, c)
	if err != nil {
		return err
	}
	if err := r.records.Put(ctx, userID, entry.Key, entry.Value); err != nil {
		return fmt.Errorf("failed to save %s: %w", entry.Key, err)
	}
	return nil
}

// SwapCounter replaces the counter of feature with next only if it is still
// stored as old (nil meaning absent).
func (r *Repository) SwapCounter(
	ctx context.Context,
	userID uuid.UUID,
	feature domain.Feature,
	old []byte,
	next domain.DailyCounter,
) (bool, error) {
	entry, err := CounterEntry(feature, next)
	if err != nil {
		return false, err
	}
	swapped, err := r.records.CompareAndSwap(ctx, userID, entry.Key, old, entry.Value)
	if err != nil {
		return false, fmt.Errorf("failed to swap %s: %w", entry.Key, err)
	}
	return swapped, nil
}

// Reset writes the initial progress, streak and both counters in one batch.
// A stored leveling curve is configuration and is left alone.
func (r *Repository) Reset(ctx context.Context, userID uuid.UUID) error {
	progress, err := ProgressEntry(domain.NewProgressState())
	if err != nil {
		return err
	}
	streak, err := StreakEntry(domain.StreakRecord{})
	if err != nil {
		return err
	}
	lessons, err := CounterEntry(domain.FeatureLesson, domain.DailyCounter{})
	if err != nil {
		return err
	}
	arena, err := CounterEntry(domain.FeatureArena, domain.DailyCounter{})
	if err != nil {
		return err
	}
	return r.Save(ctx, userID, progress, streak, lessons, arena)
}

func encodeEntry(key Key, v any) (Entry, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return Entry{Key: key, Value: payload}, nil
}

// ProgressEntry encodes s as a progress_state entry.
func ProgressEntry(s domain.ProgressState) (Entry, error) {
	return encodeEntry(KeyProgressState, s)
}

// StreakEntry encodes rec as a daily_streak entry.
func StreakEntry(rec domain.StreakRecord) (Entry, error) {
	return encodeEntry(KeyDailyStreak, rec)
}

// CounterEntry encodes c as the counter entry of feature.
func CounterEntry(feature domain.Feature, c domain.DailyCounter) (Entry, error) {
	key, err := CounterKey(feature)
	if err != nil {
		return Entry{}, err
	}
	return encodeEntry(key, c)
}
