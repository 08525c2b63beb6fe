// Package migrations holds the embedded SQLite schema migrations.
package migrations

import "embed"

// FS contains embedded SQLite migrations for the record store.
//
//go:embed *.sql
var FS embed.FS
