package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-quest/internal/domain"
)

// Key names one persisted record of a user.
type Key string

// Record keys. The names are part of the storage format.
const (
	KeyProgressState       Key = "progress_state"
	KeyDailyStreak         Key = "daily_streak"
	KeyDailyLessonCounter  Key = "daily_lesson_counter"
	KeyDailyArenaCounter   Key = "daily_arena_counter"
	KeyLevelingCurveConfig Key = "leveling_curve_config"
)

// Keys lists every record key in a stable order.
func Keys() []Key {
	return []Key{
		KeyProgressState,
		KeyDailyStreak,
		KeyDailyLessonCounter,
		KeyDailyArenaCounter,
		KeyLevelingCurveConfig,
	}
}

// IsValid reports whether k is one of the known record keys.
func (k Key) IsValid() bool {
	for _, known := range Keys() {
		if k == known {
			return true
		}
	}
	return false
}

func (k Key) String() string { return string(k) }

// CounterKey returns the record key of a rate-limited feature's counter.
func CounterKey(f domain.Feature) (Key, error) {
	switch f {
	case domain.FeatureLesson:
		return KeyDailyLessonCounter, nil
	case domain.FeatureArena:
		return KeyDailyArenaCounter, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownFeature, f)
	}
}

// Entry is one record of a multi-record write.
type Entry struct {
	Key   Key
	Value []byte
}

// RecordStore is the key-value persistence collaborator. Values are opaque
// JSON documents, always written whole.
//
// Implementations must be safe for concurrent use.
type RecordStore interface {
	// Get returns the stored value, or ErrNotFound when the key is absent.
	Get(ctx context.Context, userID uuid.UUID, key Key) ([]byte, error)

	// Put replaces the value under key.
	Put(ctx context.Context, userID uuid.UUID, key Key, value []byte) error

	// PutMany replaces several values atomically: either every entry is
	// written or none is.
	PutMany(ctx context.Context, userID uuid.UUID, entries []Entry) error

	// CompareAndSwap writes next only if the current value equals old. A nil
	// old means the key must be absent. It reports whether the write happened.
	CompareAndSwap(ctx context.Context, userID uuid.UUID, key Key, old, next []byte) (bool, error)

	// Delete removes the value under key. Deleting an absent key is not an error.
	Delete(ctx context.Context, userID uuid.UUID, key Key) error
}

// ValidateEntries rejects empty batches, unknown keys and duplicate keys.
func ValidateEntries(entries []Entry) error {
	if len(entries) == 0 {
		return fmt.Errorf("%w: empty batch", ErrInvalidRecord)
	}
	seen := make(map[Key]struct{}, len(entries))
	for _, e := range entries {
		if !e.Key.IsValid() {
			return fmt.Errorf("%w: %q", ErrInvalidKey, e.Key)
		}
		if _, dup := seen[e.Key]; dup {
			return fmt.Errorf("%w: duplicate key %q in batch", ErrInvalidRecord, e.Key)
		}
		seen[e.Key] = struct{}{}
	}
	return nil
}
