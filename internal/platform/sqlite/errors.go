package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/phrazzld/scry-quest/internal/redact"
	"github.com/phrazzld/scry-quest/internal/store"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// MapError maps a SQLite error onto the store's error set. Driver messages
// are redacted because they can echo statements back.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}

	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3lib.SQLITE_CONSTRAINT:
			return fmt.Errorf("%w: constraint violation: %s", store.ErrInvalidRecord, redact.Error(err))
		case sqlite3lib.SQLITE_BUSY, sqlite3lib.SQLITE_LOCKED:
			return fmt.Errorf("%w: database is locked: %s", store.ErrUnavailable, redact.Error(err))
		}
	}
	return err
}
