package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/scry-quest/internal/redact"
	"github.com/phrazzld/scry-quest/internal/store"
)

// PostgreSQL error codes
const (
	// checkViolationCode is the PostgreSQL error code for check constraint violations
	checkViolationCode = "23514"

	// notNullViolationCode is the PostgreSQL error code for not null violations
	notNullViolationCode = "23502"

	// invalidTextRepresentationCode is raised for malformed input such as bad JSON
	invalidTextRepresentationCode = "22P02"

	// invalidJSONTextCode is raised by the json input functions
	invalidJSONTextCode = "22032"

	// serializationFailureCode and deadlockDetectedCode abort a transaction that may be retried
	serializationFailureCode = "40001"
	deadlockDetectedCode     = "40P01"

	// cannotConnectNowCode is raised while the server is starting or shutting down
	cannotConnectNowCode = "57P03"
)

// MapError maps a database error to the store's error set. It wraps the
// original error, with credentials and statements redacted, to preserve
// context for debugging.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case checkViolationCode:
			return fmt.Errorf(
				"%w: check constraint violation (%s): %s",
				store.ErrInvalidRecord,
				pgErr.ConstraintName,
				redact.Error(err),
			)
		case notNullViolationCode:
			return fmt.Errorf(
				"%w: not null violation (%s): %s",
				store.ErrInvalidRecord,
				pgErr.ColumnName,
				redact.Error(err),
			)
		case invalidTextRepresentationCode, invalidJSONTextCode:
			return fmt.Errorf("%w: malformed payload: %s", store.ErrInvalidRecord, redact.Error(err))
		case serializationFailureCode, deadlockDetectedCode:
			return fmt.Errorf("%w: %s", store.ErrTransactionFailed, redact.Error(err))
		case cannotConnectNowCode:
			return fmt.Errorf("%w: %s", store.ErrUnavailable, redact.Error(err))
		}
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return fmt.Errorf("%w: %s", store.ErrUnavailable, redact.Error(err))
	}

	return err
}
