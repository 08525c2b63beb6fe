package postgres_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/scry-quest/internal/platform/postgres"
	"github.com/phrazzld/scry-quest/internal/store"
	"github.com/stretchr/testify/assert"
)

// Mock PgError creation helper
func newPgError(code string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		Message:        "error message",
		Detail:         "Failing row contains (postgres://quest:hunter22@db/quest)",
		SchemaName:     "public",
		TableName:      "progress_records",
		ColumnName:     "payload",
		ConstraintName: "progress_records_key_check",
	}
}

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{"no rows", sql.ErrNoRows, store.ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", sql.ErrNoRows), store.ErrNotFound},
		{"check violation", newPgError("23514"), store.ErrInvalidRecord},
		{"not null violation", newPgError("23502"), store.ErrInvalidRecord},
		{"malformed json", newPgError("22P02"), store.ErrInvalidRecord},
		{"serialization failure", newPgError("40001"), store.ErrTransactionFailed},
		{"deadlock", newPgError("40P01"), store.ErrTransactionFailed},
		{"server starting", newPgError("57P03"), store.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, postgres.MapError(tt.err), tt.expected)
		})
	}
}

func TestMapErrorPassThrough(t *testing.T) {
	t.Parallel()

	assert.NoError(t, postgres.MapError(nil))

	generic := errors.New("generic error")
	assert.Equal(t, generic, postgres.MapError(generic))

	unmapped := newPgError("42P01")
	assert.Equal(t, error(unmapped), postgres.MapError(unmapped))
}

func TestMapErrorCarriesConstraintName(t *testing.T) {
	t.Parallel()

	err := postgres.MapError(newPgError("23514"))
	assert.Contains(t, err.Error(), "progress_records_key_check")
}
