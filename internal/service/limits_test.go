package service_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-quest/internal/domain"
	"github.com/phrazzld/scry-quest/internal/platform/memory"
	"github.com/phrazzld/scry-quest/internal/service"
	"github.com/phrazzld/scry-quest/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// losingStore reports every compare-and-swap as lost to another writer.
type losingStore struct {
	store.RecordStore
	swaps int
}

func (s *losingStore) CompareAndSwap(context.Context, uuid.UUID, store.Key, []byte, []byte) (bool, error) {
	s.swaps++
	return false, nil
}

func TestDailyLimitAcrossDays(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	for i := range 3 {
		ok, err := f.engine.MayConsume(ctx, f.user, domain.FeatureLesson, domain.TierFree)
		require.NoError(t, err)
		assert.True(t, ok, "unit %d", i+1)
		require.NoError(t, f.engine.Consume(ctx, f.user, domain.FeatureLesson, domain.TierFree))
	}

	ok, err := f.engine.MayConsume(ctx, f.user, domain.FeatureLesson, domain.TierFree)
	require.NoError(t, err)
	assert.False(t, ok)
	remaining, err := f.engine.Remaining(ctx, f.user, domain.FeatureLesson, domain.TierFree)
	require.NoError(t, err)
	assert.Zero(t, remaining)

	// Arena has its own counter.
	remaining, err = f.engine.Remaining(ctx, f.user, domain.FeatureArena, domain.TierFree)
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)

	f.clock.AddDays(1)
	ok, err = f.engine.MayConsume(ctx, f.user, domain.FeatureLesson, domain.TierFree)
	require.NoError(t, err)
	assert.True(t, ok)
	remaining, err = f.engine.Remaining(ctx, f.user, domain.FeatureLesson, domain.TierFree)
	require.NoError(t, err)
	assert.Equal(t, 3, remaining)

	// A stale day reads as unused without a write.
	raw, err := f.records.Get(ctx, f.user, store.KeyDailyLessonCounter)
	require.NoError(t, err)
	assert.JSONEq(t, `{"day":"2024-03-09","countUsed":3}`, string(raw))

	require.NoError(t, f.engine.Consume(ctx, f.user, domain.FeatureLesson, domain.TierFree))
	raw, err = f.records.Get(ctx, f.user, store.KeyDailyLessonCounter)
	require.NoError(t, err)
	assert.JSONEq(t, `{"day":"2024-03-10","countUsed":1}`, string(raw))
}

func TestPaidTiersAreUnlimited(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	for _, tier := range []domain.Tier{domain.TierPlus, domain.TierPremium} {
		for range 5 {
			ok, err := f.engine.MayConsume(ctx, f.user, domain.FeatureArena, tier)
			require.NoError(t, err)
			assert.True(t, ok)
			require.NoError(t, f.engine.Consume(ctx, f.user, domain.FeatureArena, tier))
		}
		remaining, err := f.engine.Remaining(ctx, f.user, domain.FeatureArena, tier)
		require.NoError(t, err)
		assert.Equal(t, service.Unlimited, remaining)

		left, err := f.engine.TryConsume(ctx, f.user, domain.FeatureArena, tier)
		require.NoError(t, err)
		assert.Equal(t, service.Unlimited, left)
	}

	_, err := f.records.Get(ctx, f.user, store.KeyDailyArenaCounter)
	assert.ErrorIs(t, err, store.ErrNotFound)

	status, err := f.engine.Status(ctx, f.user, domain.TierPlus)
	require.NoError(t, err)
	assert.Equal(t, service.Unlimited, status.LessonsRemaining)
	assert.Equal(t, service.Unlimited, status.ArenaGamesRemaining)
}

func TestUnknownFeature(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	_, err := f.engine.MayConsume(ctx, f.user, "boss_fight", domain.TierFree)
	assert.ErrorIs(t, err, domain.ErrUnknownFeature)
	assert.ErrorIs(t, f.engine.Consume(ctx, f.user, "boss_fight", domain.TierPremium), domain.ErrUnknownFeature)
	_, err = f.engine.Remaining(ctx, f.user, "boss_fight", domain.TierFree)
	assert.ErrorIs(t, err, domain.ErrUnknownFeature)
	_, err = f.engine.TryConsume(ctx, f.user, "boss_fight", domain.TierFree)
	assert.ErrorIs(t, err, domain.ErrUnknownFeature)
}

func TestTryConsume(t *testing.T) {
	t.Parallel()

	t.Run("consumes until the limit", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil, nil)
		ctx := context.Background()

		left, err := f.engine.TryConsume(ctx, f.user, domain.FeatureArena, domain.TierFree)
		require.NoError(t, err)
		assert.Equal(t, 1, left)

		left, err = f.engine.TryConsume(ctx, f.user, domain.FeatureArena, domain.TierFree)
		require.NoError(t, err)
		assert.Zero(t, left)

		_, err = f.engine.TryConsume(ctx, f.user, domain.FeatureArena, domain.TierFree)
		assert.ErrorIs(t, err, service.ErrLimitReached)

		f.clock.AddDays(1)
		left, err = f.engine.TryConsume(ctx, f.user, domain.FeatureArena, domain.TierFree)
		require.NoError(t, err)
		assert.Equal(t, 1, left)
	})

	t.Run("gives up after repeated conflicts", func(t *testing.T) {
		t.Parallel()
		losing := &losingStore{RecordStore: memory.NewRecordStore(nil)}
		f := newFixture(t, losing, nil)

		_, err := f.engine.TryConsume(context.Background(), f.user, domain.FeatureLesson, domain.TierFree)
		assert.ErrorIs(t, err, store.ErrConflict)
		assert.Equal(t, 3, losing.swaps)
		assert.Len(t, f.logs.EntriesWithMessage("counter changed concurrently, retrying"), 3)
	})

	t.Run("concurrent consumers never exceed capacity", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil, nil)
		ctx := context.Background()

		results := make(chan error, 8)
		for range 8 {
			go func() {
				_, err := f.engine.TryConsume(ctx, f.user, domain.FeatureLesson, domain.TierFree)
				results <- err
			}()
		}

		succeeded := 0
		for range 8 {
			if err := <-results; err == nil {
				succeeded++
			}
		}
		assert.GreaterOrEqual(t, succeeded, 1)
		assert.LessOrEqual(t, succeeded, 3)

		raw, err := f.records.Get(ctx, f.user, store.KeyDailyLessonCounter)
		require.NoError(t, err)
		assert.JSONEq(t, `{"day":"2024-03-09","countUsed":`+strconv.Itoa(succeeded)+`}`, string(raw))
	})
}
