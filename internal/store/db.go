package store

import (
	"context"
	"database/sql"
)

// DBTX is implemented by both *sql.DB and *sql.Tx, so SQL-backed record
// stores can run the same statements inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
