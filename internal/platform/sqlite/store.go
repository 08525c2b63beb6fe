// Package sqlite provides an on-device store.RecordStore backed by SQLite
// through the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-quest/internal/platform/migrate"
	"github.com/phrazzld/scry-quest/internal/platform/sqlite/migrations"
	"github.com/phrazzld/scry-quest/internal/store"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Dialect is the goose dialect of this backend.
const Dialect = goose.DialectSQLite3

// RecordStore implements store.RecordStore on a SQLite database file.
type RecordStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ store.RecordStore = (*RecordStore)(nil)

// DSN returns the connection string for the database file at path.
func DSN(path string) string {
	return "file:" + filepath.Clean(path) +
		"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_txlock=immediate"
}

// OpenDB opens and pings the database file at path without migrating it.
func OpenDB(ctx context.Context, path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	return db, nil
}

// Open opens the database file at path, applies embedded migrations and
// returns a ready RecordStore. Close releases the handle.
func Open(ctx context.Context, path string, logger *slog.Logger) (*RecordStore, error) {
	db, err := OpenDB(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := migrate.Up(ctx, db, Dialect, migrations.FS, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return NewRecordStore(db, logger), nil
}

// NewRecordStore wraps an already migrated database.
// If logger is nil, a default logger will be used.
func NewRecordStore(db *sql.DB, logger *slog.Logger) *RecordStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordStore{
		db:     db,
		logger: logger.With(slog.String("component", "sqlite_record_store")),
	}
}

// Close closes the SQLite handle.
func (s *RecordStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func nowMillis() int64 {
	return time.Now().UTC().UnixMilli()
}

// Get implements store.RecordStore.
func (s *RecordStore) Get(ctx context.Context, userID uuid.UUID, key store.Key) ([]byte, error) {
	if !key.IsValid() {
		return nil, store.NewStoreError(key.String(), "get", "unknown key", store.ErrInvalidKey)
	}
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM progress_records WHERE user_id = ? AND record_key = ?`,
		userID.String(), string(key),
	).Scan(&payload)
	if err != nil {
		return nil, MapError(err)
	}
	return payload, nil
}

// Put implements store.RecordStore.
func (s *RecordStore) Put(ctx context.Context, userID uuid.UUID, key store.Key, value []byte) error {
	if err := upsert(ctx, s.db, userID, key, value); err != nil {
		return store.NewStoreError(key.String(), "put", "failed to write record", err)
	}
	return nil
}

// PutMany implements store.RecordStore inside a single transaction.
func (s *RecordStore) PutMany(ctx context.Context, userID uuid.UUID, entries []store.Entry) error {
	if err := store.ValidateEntries(entries); err != nil {
		return store.NewStoreError("records", "put_many", "rejected batch", err)
	}
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		for _, e := range entries {
			if err := upsert(ctx, tx, userID, e.Key, e.Value); err != nil {
				return fmt.Errorf("write %s: %w", e.Key, err)
			}
		}
		return nil
	})
	if err != nil {
		return store.NewStoreError("records", "put_many", "batch not committed", err)
	}
	s.logger.DebugContext(ctx, "records written",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(entries)))
	return nil
}

// CompareAndSwap implements store.RecordStore.
func (s *RecordStore) CompareAndSwap(
	ctx context.Context,
	userID uuid.UUID,
	key store.Key,
	old, next []byte,
) (bool, error) {
	if !key.IsValid() {
		return false, store.NewStoreError(key.String(), "compare_and_swap", "unknown key", store.ErrInvalidKey)
	}

	var (
		res sql.Result
		err error
	)
	if old == nil {
		res, err = s.db.ExecContext(ctx,
			`INSERT INTO progress_records (user_id, record_key, payload, updated_at)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT (user_id, record_key) DO NOTHING`,
			userID.String(), string(key), string(next), nowMillis())
	} else {
		res, err = s.db.ExecContext(ctx,
			`UPDATE progress_records
			    SET payload = ?, updated_at = ?
			  WHERE user_id = ? AND record_key = ? AND payload = ?`,
			string(next), nowMillis(), userID.String(), string(key), string(old))
	}
	if err != nil {
		return false, store.NewStoreError(key.String(), "compare_and_swap", "failed to swap record", MapError(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n == 1, nil
}

// Delete implements store.RecordStore.
func (s *RecordStore) Delete(ctx context.Context, userID uuid.UUID, key store.Key) error {
	if !key.IsValid() {
		return store.NewStoreError(key.String(), "delete", "unknown key", store.ErrInvalidKey)
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM progress_records WHERE user_id = ? AND record_key = ?`,
		userID.String(), string(key))
	if err != nil {
		return store.NewStoreError(key.String(), "delete", "failed to delete record", MapError(err))
	}
	return nil
}

// upsert writes one record. Payloads are bound as TEXT so later
// compare-and-swap equality is a plain string comparison.
func upsert(ctx context.Context, db store.DBTX, userID uuid.UUID, key store.Key, value []byte) error {
	if !key.IsValid() {
		return store.ErrInvalidKey
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO progress_records (user_id, record_key, payload, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id, record_key)
		 DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		userID.String(), string(key), string(value), nowMillis())
	return MapError(err)
}
