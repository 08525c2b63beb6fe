package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/phrazzld/scry-quest/internal/platform/migrate"
	"github.com/phrazzld/scry-quest/internal/platform/postgres/migrations"
	"github.com/phrazzld/scry-quest/internal/redact"
	"github.com/phrazzld/scry-quest/internal/store"
	"github.com/pressly/goose/v3"
)

// Dialect is the goose dialect of this backend.
const Dialect = goose.DialectPostgres

// OpenDB opens a connection pool to url and checks that it is reachable.
func OpenDB(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %s", redact.String(err.Error()))
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", MapError(err))
	}
	return db, nil
}

// Open connects to url, applies embedded migrations and returns a ready
// PostgresRecordStore. Close releases the pool.
func Open(ctx context.Context, url string, logger *slog.Logger) (*PostgresRecordStore, error) {
	db, err := OpenDB(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := migrate.Up(ctx, db, Dialect, migrations.FS, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return NewPostgresRecordStore(db, logger), nil
}

// PostgresRecordStore implements the store.RecordStore interface
// using a PostgreSQL database as the storage backend.
type PostgresRecordStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresRecordStore creates a new PostgreSQL implementation of the RecordStore interface.
// It accepts a database pool that should be initialized and migrated by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresRecordStore(db *sql.DB, logger *slog.Logger) *PostgresRecordStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRecordStore{
		db:     db,
		logger: logger.With(slog.String("component", "record_store")),
	}
}

// Ensure PostgresRecordStore implements store.RecordStore interface
var _ store.RecordStore = (*PostgresRecordStore)(nil)

// Close closes the connection pool.
func (s *PostgresRecordStore) Close() error {
	return s.db.Close()
}

// Get implements store.RecordStore.Get.
// Returns store.ErrNotFound if the record does not exist.
func (s *PostgresRecordStore) Get(ctx context.Context, userID uuid.UUID, key store.Key) ([]byte, error) {
	if !key.IsValid() {
		return nil, store.NewStoreError(key.String(), "get", "unknown key", store.ErrInvalidKey)
	}

	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM progress_records WHERE user_id = $1 AND record_key = $2`,
		userID, string(key),
	).Scan(&payload)
	if err != nil {
		mapped := MapError(err)
		if !store.IsNotFoundError(mapped) {
			s.logger.ErrorContext(ctx, "failed to read record",
				slog.String("user_id", userID.String()),
				slog.String("key", key.String()),
				slog.String("error", redact.Error(err)))
		}
		return nil, mapped
	}
	return payload, nil
}

// Put implements store.RecordStore.Put.
func (s *PostgresRecordStore) Put(ctx context.Context, userID uuid.UUID, key store.Key, value []byte) error {
	if err := upsert(ctx, s.db, userID, key, value); err != nil {
		return store.NewStoreError(key.String(), "put", "failed to write record", err)
	}
	return nil
}

// PutMany implements store.RecordStore.PutMany inside a single transaction.
func (s *PostgresRecordStore) PutMany(ctx context.Context, userID uuid.UUID, entries []store.Entry) error {
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
		s.logger.ErrorContext(ctx, "failed to write record batch",
			slog.String("user_id", userID.String()),
			slog.Int("count", len(entries)),
			slog.String("error", redact.Error(err)))
		return store.NewStoreError("records", "put_many", "batch not committed", err)
	}

	s.logger.DebugContext(ctx, "records written",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(entries)))
	return nil
}

// CompareAndSwap implements store.RecordStore.CompareAndSwap. Payloads are
// compared as jsonb, so formatting differences between the stored and the
// expected document do not matter.
func (s *PostgresRecordStore) CompareAndSwap(
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
			`INSERT INTO progress_records (user_id, record_key, payload)
			 VALUES ($1, $2, $3::jsonb)
			 ON CONFLICT (user_id, record_key) DO NOTHING`,
			userID, string(key), string(next))
	} else {
		res, err = s.db.ExecContext(ctx,
			`UPDATE progress_records
			    SET payload = $3::jsonb
			  WHERE user_id = $1 AND record_key = $2 AND payload = $4::jsonb`,
			userID, string(key), string(next), string(old))
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

// Delete implements store.RecordStore.Delete. Deleting an absent record is
// not an error.
func (s *PostgresRecordStore) Delete(ctx context.Context, userID uuid.UUID, key store.Key) error {
	if !key.IsValid() {
		return store.NewStoreError(key.String(), "delete", "unknown key", store.ErrInvalidKey)
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM progress_records WHERE user_id = $1 AND record_key = $2`,
		userID, string(key))
	if err != nil {
		return store.NewStoreError(key.String(), "delete", "failed to delete record", MapError(err))
	}
	return nil
}

func upsert(ctx context.Context, db store.DBTX, userID uuid.UUID, key store.Key, value []byte) error {
	if !key.IsValid() {
		return store.ErrInvalidKey
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO progress_records (user_id, record_key, payload)
		 VALUES ($1, $2, $3::jsonb)
		 ON CONFLICT (user_id, record_key)
		 DO UPDATE SET payload = EXCLUDED.payload`,
		userID, string(key), string(value))
	return MapError(err)
}
