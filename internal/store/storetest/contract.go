// Package storetest holds the behavioural contract every store.RecordStore
// implementation is tested against.
package storetest

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-quest/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty store for one subtest.
type Factory func(t *testing.T) store.RecordStore

// RunRecordStoreContract runs the shared RecordStore behaviour tests.
func RunRecordStoreContract(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("get absent record", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(context.Background(), uuid.New(), store.KeyProgressState)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("put then get", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		user := uuid.New()

		require.NoError(t, s.Put(ctx, user, store.KeyDailyStreak, []byte(`{"lastCompletionDay":"2024-06-10","currentStreakLength":3,"completedToday":true}`)))
		got, err := s.Get(ctx, user, store.KeyDailyStreak)
		require.NoError(t, err)
		assert.JSONEq(t, `{"lastCompletionDay":"2024-06-10","currentStreakLength":3,"completedToday":true}`, string(got))

		require.NoError(t, s.Put(ctx, user, store.KeyDailyStreak, []byte(`{"currentStreakLength":0}`)))
		got, err = s.Get(ctx, user, store.KeyDailyStreak)
		require.NoError(t, err)
		assert.JSONEq(t, `{"currentStreakLength":0}`, string(got))
	})

	t.Run("users are isolated", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		alice, bob := uuid.New(), uuid.New()

		require.NoError(t, s.Put(ctx, alice, store.KeyDailyLessonCounter, []byte(`{"day":"2024-06-10","countUsed":2}`)))
		_, err := s.Get(ctx, bob, store.KeyDailyLessonCounter)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("put many writes every entry", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		user := uuid.New()

		err := s.PutMany(ctx, user, []store.Entry{
			{Key: store.KeyProgressState, Value: []byte(`{"lessonIndex":1}`)},
			{Key: store.KeyDailyStreak, Value: []byte(`{"currentStreakLength":1}`)},
		})
		require.NoError(t, err)

		progress, err := s.Get(ctx, user, store.KeyProgressState)
		require.NoError(t, err)
		assert.JSONEq(t, `{"lessonIndex":1}`, string(progress))

		streak, err := s.Get(ctx, user, store.KeyDailyStreak)
		require.NoError(t, err)
		assert.JSONEq(t, `{"currentStreakLength":1}`, string(streak))
	})

	t.Run("rejected batch writes nothing", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		user := uuid.New()

		err := s.PutMany(ctx, user, []store.Entry{
			{Key: store.KeyProgressState, Value: []byte(`{"lessonIndex":1}`)},
			{Key: store.Key("inventory"), Value: []byte(`{}`)},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, store.ErrInvalidKey)

		_, err = s.Get(ctx, user, store.KeyProgressState)
		assert.ErrorIs(t, err, store.ErrNotFound)

		assert.Error(t, s.PutMany(ctx, user, nil))
	})

	t.Run("unknown key", func(t *testing.T) {
		s := newStore(t)
		err := s.Put(context.Background(), uuid.New(), store.Key("inventory"), []byte(`{}`))
		assert.ErrorIs(t, err, store.ErrInvalidKey)
	})

	t.Run("compare and swap on absent record", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		user := uuid.New()

		swapped, err := s.CompareAndSwap(ctx, user, store.KeyDailyArenaCounter, nil, []byte(`{"day":"2024-06-10","countUsed":1}`))
		require.NoError(t, err)
		assert.True(t, swapped)

		swapped, err = s.CompareAndSwap(ctx, user, store.KeyDailyArenaCounter, nil, []byte(`{"day":"2024-06-10","countUsed":9}`))
		require.NoError(t, err)
		assert.False(t, swapped, "absent expectation must fail once the record exists")

		got, err := s.Get(ctx, user, store.KeyDailyArenaCounter)
		require.NoError(t, err)
		assert.JSONEq(t, `{"day":"2024-06-10","countUsed":1}`, string(got))
	})

	t.Run("compare and swap on existing record", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		user := uuid.New()

		require.NoError(t, s.Put(ctx, user, store.KeyDailyLessonCounter, []byte(`{"day":"2024-06-10","countUsed":1}`)))
		current, err := s.Get(ctx, user, store.KeyDailyLessonCounter)
		require.NoError(t, err)

		swapped, err := s.CompareAndSwap(ctx, user, store.KeyDailyLessonCounter, current, []byte(`{"day":"2024-06-10","countUsed":2}`))
		require.NoError(t, err)
		assert.True(t, swapped)

		// current is now stale
		swapped, err = s.CompareAndSwap(ctx, user, store.KeyDailyLessonCounter, current, []byte(`{"day":"2024-06-10","countUsed":3}`))
		require.NoError(t, err)
		assert.False(t, swapped)

		got, err := s.Get(ctx, user, store.KeyDailyLessonCounter)
		require.NoError(t, err)
		assert.JSONEq(t, `{"day":"2024-06-10","countUsed":2}`, string(got))

		swapped, err = s.CompareAndSwap(ctx, uuid.New(), store.KeyDailyLessonCounter, got, []byte(`{}`))
		require.NoError(t, err)
		assert.False(t, swapped, "expected value on another user's absent record")
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		user := uuid.New()

		require.NoError(t, s.Put(ctx, user, store.KeyLevelingCurveConfig, []byte(`{"maxLevel":20}`)))
		require.NoError(t, s.Delete(ctx, user, store.KeyLevelingCurveConfig))

		_, err := s.Get(ctx, user, store.KeyLevelingCurveConfig)
		assert.ErrorIs(t, err, store.ErrNotFound)

		assert.NoError(t, s.Delete(ctx, user, store.KeyLevelingCurveConfig), "deleting an absent record is not an error")
	})
}
