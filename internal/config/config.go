package config

import (
	"github.com/phrazzld/scry-quest/internal/domain/leveling"
	"github.com/phrazzld/scry-quest/internal/domain/sequencer"
)

// Config holds all application configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log"     validate:"required"`
	Storage StorageConfig `mapstructure:"storage" validate:"required"`
	Engine  EngineConfig  `mapstructure:"engine"  validate:"required"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level     string `mapstructure:"level"      validate:"required,oneof=debug info warn error"`
	Format    string `mapstructure:"format"     validate:"required,oneof=json text"`
	AddSource bool   `mapstructure:"add_source"`
}

// StorageConfig selects and configures the record store backend.
type StorageConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=memory sqlite postgres"`
	// Path is the SQLite database file.
	Path string `mapstructure:"path" validate:"required_if=Driver sqlite"`
	// URL is the PostgreSQL connection string.
	URL string `mapstructure:"url" validate:"required_if=Driver postgres,omitempty,url"`
}

// EngineConfig contains the progression rules.
type EngineConfig struct {
	// TimeZone is the IANA zone that day keys are computed in.
	TimeZone string          `mapstructure:"time_zone" validate:"required,timezone"`
	Rules    sequencer.Rules `mapstructure:"rules"`
	Limits   LimitsConfig    `mapstructure:"limits"`
	// Curve is clamped by the engine rather than rejected here.
	Curve leveling.Curve `mapstructure:"curve" validate:"-"`
	// SwapRetries bounds the compare-and-swap loop of atomic consumes.
	SwapRetries int `mapstructure:"swap_retries" validate:"gte=1,lte=100"`
}

// LimitsConfig holds the per-day capacities of rate-limited features.
type LimitsConfig struct {
	LessonsPerDay    int `mapstructure:"lessons_per_day"     validate:"gte=0"`
	ArenaGamesPerDay int `mapstructure:"arena_games_per_day" validate:"gte=0"`
}
