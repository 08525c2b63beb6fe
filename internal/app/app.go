// Package app wires configuration, storage and the progression engine into
// one Application for the command-line entry points.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-quest/internal/config"
	"github.com/phrazzld/scry-quest/internal/domain"
	"github.com/phrazzld/scry-quest/internal/domain/clock"
	"github.com/phrazzld/scry-quest/internal/events"
	"github.com/phrazzld/scry-quest/internal/platform/memory"
	"github.com/phrazzld/scry-quest/internal/platform/migrate"
	"github.com/phrazzld/scry-quest/internal/platform/postgres"
	pgmigrations "github.com/phrazzld/scry-quest/internal/platform/postgres/migrations"
	"github.com/phrazzld/scry-quest/internal/platform/sqlite"
	sqlitemigrations "github.com/phrazzld/scry-quest/internal/platform/sqlite/migrations"
	"github.com/phrazzld/scry-quest/internal/redact"
	"github.com/phrazzld/scry-quest/internal/service"
	"github.com/phrazzld/scry-quest/internal/store"
)

// Storage drivers accepted in StorageConfig.Driver.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrNoMigrations is returned by Migrate for drivers without a schema.
var ErrNoMigrations = errors.New("storage driver has no migrations")

// Application holds the shared dependencies and releases them on Close.
type Application struct {
	Config  *config.Config
	Logger  *slog.Logger
	Records store.RecordStore
	Events  *events.InMemoryEventEmitter
	Engine  *service.Engine

	closer io.Closer
}

// New opens the configured store and builds the engine. A nil clock reads
// the system time.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, clk clock.Clock) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	loc, err := time.LoadLocation(cfg.Engine.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("failed to load time zone %q: %w", cfg.Engine.TimeZone, err)
	}

	records, closer, err := OpenRecordStore(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, err
	}

	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(events.NewLogHandler(logger))

	engine, err := service.NewEngine(
		store.NewRepository(records, logger),
		clock.NewCalendar(clk, loc),
		EngineSettings(cfg.Engine),
		emitter,
		logger,
	)
	if err != nil {
		closeQuietly(closer, logger)
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	return &Application{
		Config:  cfg,
		Logger:  logger,
		Records: records,
		Events:  emitter,
		Engine:  engine,
		closer:  closer,
	}, nil
}

// Close releases the store.
func (a *Application) Close() error {
	if a == nil || a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// EngineSettings maps the engine configuration onto service settings.
func EngineSettings(cfg config.EngineConfig) service.Settings {
	return service.Settings{
		Rules: cfg.Rules,
		Capacities: map[domain.Feature]int{
			domain.FeatureLesson: cfg.Limits.LessonsPerDay,
			domain.FeatureArena:  cfg.Limits.ArenaGamesPerDay,
		},
		Curve:       cfg.Curve,
		SwapRetries: cfg.SwapRetries,
	}
}

// OpenRecordStore opens the configured backend, migrating SQL databases to
// the latest schema. The returned closer is nil for the memory driver.
func OpenRecordStore(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (store.RecordStore, io.Closer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Driver {
	case DriverMemory:
		logger.Debug("using in-memory record store")
		return memory.NewRecordStore(logger), nil, nil
	case DriverSQLite:
		s, err := sqlite.Open(ctx, cfg.Path, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		logger.Info("sqlite record store opened", slog.String("path", cfg.Path))
		return s, s, nil
	case DriverPostgres:
		s, err := postgres.Open(ctx, cfg.URL, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		logger.Info("postgres record store opened", slog.String("url", redact.URL(cfg.URL)))
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

// Migrate runs a migration command against the configured SQL database.
func Migrate(ctx context.Context, cfg config.StorageConfig, command migrate.Command, logger *slog.Logger) (*migrate.Report, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Driver {
	case DriverSQLite:
		db, err := sqlite.OpenDB(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}
		defer closeQuietly(db, logger)
		return migrate.Run(ctx, db, sqlite.Dialect, sqlitemigrations.FS, command, logger)
	case DriverPostgres:
		db, err := postgres.OpenDB(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		defer closeQuietly(db, logger)
		return migrate.Run(ctx, db, postgres.Dialect, pgmigrations.FS, command, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrNoMigrations, cfg.Driver)
	}
}

func closeQuietly(c io.Closer, logger *slog.Logger) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logger.Warn("failed to close store", slog.String("error", redact.Error(err)))
	}
}
