// Package postgres provides a server-side store.RecordStore on PostgreSQL,
// using the pgx stdlib driver. Records live in a single jsonb table keyed by
// user and record key; schema changes ship as embedded goose migrations.
package postgres
