package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-quest/internal/platform/migrate"
	"github.com/phrazzld/scry-quest/internal/platform/sqlite/migrations"
	"github.com/phrazzld/scry-quest/internal/store"
	"github.com/phrazzld/scry-quest/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *RecordStore {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "progress.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordStoreContract(t *testing.T) {
	t.Parallel()

	storetest.RunRecordStoreContract(t, func(t *testing.T) store.RecordStore {
		return openTestStore(t)
	})
}

func TestPutManyRollsBackOnInvalidPayload(t *testing.T) {
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
	assert.ErrorIs(t, err, store.ErrNotFound, "first entry must be rolled back")
}

func TestReopenKeepsRecords(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "progress.db")
	ctx := context.Background()
	user := uuid.New()

	first, err := Open(ctx, path, nil)
	require.NoError(t, err)
	require.NoError(t, first.Put(ctx, user, store.KeyProgressState, []byte(`{"totalXp":40}`)))
	require.NoError(t, first.Close())

	second, err := Open(ctx, path, nil)
	require.NoError(t, err)
	defer func() { _ = second.Close() }()

	got, err := second.Get(ctx, user, store.KeyProgressState)
	require.NoError(t, err)
	assert.JSONEq(t, `{"totalXp":40}`, string(got))
}

func TestMigrationCommands(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := OpenDB(ctx, filepath.Join(t.TempDir(), "progress.db"))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	report, err := migrate.Run(ctx, db, Dialect, migrations.FS, migrate.CommandStatus, nil)
	require.NoError(t, err)
	require.Len(t, report.Status, 1)
	assert.False(t, report.Status[0].Applied)

	report, err = migrate.Run(ctx, db, Dialect, migrations.FS, migrate.CommandUp, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.Version)
	assert.Len(t, report.Applied, 1)

	report, err = migrate.Run(ctx, db, Dialect, migrations.FS, migrate.CommandReset, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), report.Version)

	_, err = migrate.Run(ctx, db, Dialect, migrations.FS, migrate.Command("sideways"), nil)
	assert.ErrorIs(t, err, migrate.ErrUnknownCommand)
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), "  ", nil)
	assert.Error(t, err)
}
