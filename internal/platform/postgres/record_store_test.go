package postgres_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-quest/internal/platform/postgres"
	"github.com/phrazzld/scry-quest/internal/store"
	"github.com/phrazzld/scry-quest/internal/store/storetest"
	"github.com/phrazzld/scry-quest/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *postgres.PostgresRecordStore {
	t.Helper()
	dbURL := testutils.GetTestDatabaseURL(t)

	s, err := postgres.Open(context.Background(), dbURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPostgresRecordStoreContract(t *testing.T) {
	if testutils.ShouldSkipDatabaseTest() {
		t.Skip(testutils.DatabaseURLEnv + " not set - skipping integration test")
	}
	t.Parallel()

	storetest.RunRecordStoreContract(t, func(t *testing.T) store.RecordStore {
		return openTestStore(t)
	})
}

func TestPostgresPutManyRollsBackOnInvalidPayload(t *testing.T) {
	if testutils.ShouldSkipDatabaseTest() {
		t.Skip(testutils.DatabaseURLEnv + " not set - skipping integration test")
	}
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	user := uuid.New()

	err := s.PutMany(ctx, user, []store.Entry{
		{Key: store.KeyProgressState, Value: []byte(`{"lessonIndex":2}`)},
		{Key: store.KeyDailyStreak, Value: []byte(`not json`)},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrInvalidRecord)

	_, err = s.Get(ctx, user, store.KeyProgressState)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPostgresCompareAndSwapIgnoresFormatting(t *testing.T) {
	if testutils.ShouldSkipDatabaseTest() {
		t.Skip(testutils.DatabaseURLEnv + " not set - skipping integration test")
	}
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	user := uuid.New()

	require.NoError(t, s.Put(ctx, user, store.KeyDailyLessonCounter, []byte(`{"day":"2024-06-10","countUsed":1}`)))

	swapped, err := s.CompareAndSwap(ctx, user, store.KeyDailyLessonCounter,
		[]byte(`{ "countUsed": 1, "day": "2024-06-10" }`),
		[]byte(`{"day":"2024-06-10","countUsed":2}`))
	require.NoError(t, err)
	assert.True(t, swapped)
}
