// Package migrate applies embedded goose migrations to the SQL record stores.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
)

// TableName is the version table shared by every dialect.
const TableName = "schema_migrations"

// Command is a migration action.
type Command string

const (
	CommandUp      Command = "up"
	CommandDown    Command = "down"
	CommandReset   Command = "reset"
	CommandStatus  Command = "status"
	CommandVersion Command = "version"
)

// Commands lists the supported commands.
func Commands() []Command {
	return []Command{CommandUp, CommandDown, CommandReset, CommandStatus, CommandVersion}
}

// ErrUnknownCommand is returned by Run for a command outside Commands.
var ErrUnknownCommand = errors.New("unknown migration command")

// slogGooseLogger adapts the goose logger interface to use slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

// Printf implements goose.Logger by forwarding to Info.
func (l *slogGooseLogger) Printf(format string, v ...any) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

// Fatalf implements goose.Logger. It does NOT call os.Exit; the error is
// returned to the caller instead.
func (l *slogGooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

// Status is the state of one migration.
type Status struct {
	Version int64
	Path    string
	Applied bool
}

// Report is the outcome of Run.
type Report struct {
	Command Command
	Version int64
	Applied []string
	Status  []Status
}

// NewProvider builds a goose provider over the migrations at the root of fsys.
func NewProvider(db *sql.DB, dialect goose.Dialect, fsys fs.FS, logger *slog.Logger) (*goose.Provider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	versions, err := database.NewStore(dialect, TableName)
	if err != nil {
		return nil, fmt.Errorf("failed to create version store: %w", err)
	}
	provider, err := goose.NewProvider("", db, fsys,
		goose.WithStore(versions),
		goose.WithLogger(&slogGooseLogger{logger: logger}),
		goose.WithDisableGlobalRegistry(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return provider, nil
}

// Up applies every pending migration.
func Up(ctx context.Context, db *sql.DB, dialect goose.Dialect, fsys fs.FS, logger *slog.Logger) error {
	_, err := Run(ctx, db, dialect, fsys, CommandUp, logger)
	return err
}

// Run executes command against db and reports what happened.
func Run(
	ctx context.Context,
	db *sql.DB,
	dialect goose.Dialect,
	fsys fs.FS,
	command Command,
	logger *slog.Logger,
) (*Report, error) {
	if logger == nil {
		logger = slog.Default()
	}
	migrationLogger := logger.With(
		slog.String("component", "migrations"),
		slog.String("dialect", string(dialect)),
		slog.String("command", string(command)),
	)

	provider, err := NewProvider(db, dialect, fsys, migrationLogger)
	if err != nil {
		return nil, err
	}

	report := &Report{Command: command}
	var results []*goose.MigrationResult

	switch command {
	case CommandUp:
		results, err = provider.Up(ctx)
	case CommandDown:
		var res *goose.MigrationResult
		res, err = provider.Down(ctx)
		if res != nil {
			results = append(results, res)
		}
	case CommandReset:
		results, err = provider.DownTo(ctx, 0)
	case CommandStatus:
		var statuses []*goose.MigrationStatus
		statuses, err = provider.Status(ctx)
		for _, s := range statuses {
			report.Status = append(report.Status, Status{
				Version: s.Source.Version,
				Path:    s.Source.Path,
				Applied: s.State == goose.StateApplied,
			})
		}
	case CommandVersion:
		// handled below
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, command)
	}
	if err != nil {
		migrationLogger.Error("migration command failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("migration %s failed: %w", command, err)
	}

	for _, res := range results {
		report.Applied = append(report.Applied, res.String())
	}

	report.Version, err = provider.GetDBVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema version: %w", err)
	}

	migrationLogger.Info("migration command completed",
		slog.Int64("version", report.Version),
		slog.Int("migrations", len(report.Applied)))
	return report, nil
}
