package app_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-quest/internal/app"
	"github.com/phrazzld/scry-quest/internal/config"
	"github.com/phrazzld/scry-quest/internal/domain"
	"github.com/phrazzld/scry-quest/internal/domain/clock"
	"github.com/phrazzld/scry-quest/internal/domain/leveling"
	"github.com/phrazzld/scry-quest/internal/domain/sequencer"
	"github.com/phrazzld/scry-quest/internal/platform/logger"
	"github.com/phrazzld/scry-quest/internal/platform/migrate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(storage config.StorageConfig) *config.Config {
	return &config.Config{
		Log:     config.LogConfig{Level: "debug", Format: "json"},
		Storage: storage,
		Engine: config.EngineConfig{
			TimeZone:    "Europe/Berlin",
			Rules:       sequencer.NewDefaultRules(),
			Limits:      config.LimitsConfig{LessonsPerDay: 5, ArenaGamesPerDay: 3},
			Curve:       leveling.DefaultCurve(),
			SwapRetries: 5,
		},
	}
}

func TestEngineSettings(t *testing.T) {
	t.Parallel()

	cfg := testConfig(config.StorageConfig{Driver: app.DriverMemory})
	settings := app.EngineSettings(cfg.Engine)

	assert.Equal(t, cfg.Engine.Rules, settings.Rules)
	assert.Equal(t, cfg.Engine.Curve, settings.Curve)
	assert.Equal(t, 5, settings.SwapRetries)
	assert.Equal(t, map[domain.Feature]int{
		domain.FeatureLesson: 5,
		domain.FeatureArena:  3,
	}, settings.Capacities)
}

func TestNewWithMemoryStore(t *testing.T) {
	t.Parallel()

	logs, log := logger.NewTestLogger(t)
	// 23:30 UTC is already the next day in Berlin.
	clk := clock.NewFixedClock(time.Date(2024, 6, 1, 23, 30, 0, 0, time.UTC))

	application, err := app.New(context.Background(), testConfig(config.StorageConfig{Driver: app.DriverMemory}), log, clk)
	require.NoError(t, err)
	defer func() { assert.NoError(t, application.Close()) }()

	user := uuid.New()
	result, err := application.Engine.Advance(context.Background(), user)
	require.NoError(t, err)
	assert.True(t, result.Streak.IsFirstToday)

	entries := logs.EntriesWithMessage("progress event")
	require.Len(t, entries, 1)
	assert.Equal(t, "first_completion_today", entries[0]["event_type"])
	assert.Contains(t, entries[0]["payload"], `"day":"2024-06-02"`)
}

func TestNewRejectsBadConfig(t *testing.T) {
	t.Parallel()

	_, err := app.New(context.Background(), nil, nil, nil)
	assert.Error(t, err)

	cfg := testConfig(config.StorageConfig{Driver: app.DriverMemory})
	cfg.Engine.TimeZone = "Mars/Olympus_Mons"
	_, err = app.New(context.Background(), cfg, nil, nil)
	assert.ErrorContains(t, err, "time zone")

	cfg = testConfig(config.StorageConfig{Driver: "etcd"})
	_, err = app.New(context.Background(), cfg, nil, nil)
	assert.ErrorContains(t, err, "unsupported storage driver")

	cfg = testConfig(config.StorageConfig{Driver: app.DriverMemory})
	cfg.Engine.Rules.StagesPerMilestone = 0
	_, err = app.New(context.Background(), cfg, nil, nil)
	assert.ErrorContains(t, err, "failed to create engine")
}

func TestSQLiteStorePersistsAcrossApplications(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	storage := config.StorageConfig{Driver: app.DriverSQLite, Path: filepath.Join(t.TempDir(), "quest.db")}
	_, log := logger.NewTestLogger(t)
	clk := clock.NewFixedClock(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	user := uuid.New()

	first, err := app.New(ctx, testConfig(storage), log, clk)
	require.NoError(t, err)
	_, err = first.Engine.Advance(ctx, user)
	require.NoError(t, err)
	_, err = first.Engine.Advance(ctx, user)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := app.New(ctx, testConfig(storage), log, clk)
	require.NoError(t, err)
	defer func() { assert.NoError(t, second.Close()) }()

	status, err := second.Engine.Status(ctx, user, domain.TierFree)
	require.NoError(t, err)
	assert.Equal(t, 3, status.LessonNumber)
	assert.Equal(t, 40, status.TotalXP)
	assert.Equal(t, 1, status.Streak)
}

func TestMigrate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, log := logger.NewTestLogger(t)

	_, err := app.Migrate(ctx, config.StorageConfig{Driver: app.DriverMemory}, migrate.CommandUp, log)
	assert.ErrorIs(t, err, app.ErrNoMigrations)

	storage := config.StorageConfig{Driver: app.DriverSQLite, Path: filepath.Join(t.TempDir(), "quest.db")}
	report, err := app.Migrate(ctx, storage, migrate.CommandUp, log)
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.Version)

	report, err = app.Migrate(ctx, storage, migrate.CommandStatus, log)
	require.NoError(t, err)
	require.Len(t, report.Status, 1)
	assert.True(t, report.Status[0].Applied)
}
