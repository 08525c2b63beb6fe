// Package migrations holds the embedded PostgreSQL schema migrations.
package migrations

import "embed"

// FS contains embedded PostgreSQL migrations for the record store.
//
//go:embed *.sql
var FS embed.FS
