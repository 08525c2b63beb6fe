package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/scry-quest/internal/domain/leveling"
	"github.com/phrazzld/scry-quest/internal/domain/sequencer"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. QUEST_LOG_LEVEL.
const EnvPrefix = "QUEST"

// Load reads configuration from defaults, an optional config.yaml and QUEST_*
// environment variables, in increasing order of precedence. The result is
// validated before it is returned.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file. An empty path searches the
// working directory and ./config for config.yaml.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.add_source", false)

	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.path", "")
	v.SetDefault("storage.url", "")

	rules := sequencer.NewDefaultRules()
	v.SetDefault("engine.time_zone", "UTC")
	v.SetDefault("engine.rules.total_lessons", rules.TotalLessons)
	v.SetDefault("engine.rules.xp_per_exercise", rules.XPPerExercise)
	v.SetDefault("engine.rules.coins_per_exercise", rules.CoinsPerExercise)
	v.SetDefault("engine.rules.stages_per_milestone", rules.StagesPerMilestone)
	v.SetDefault("engine.rules.gems_per_milestone", rules.GemsPerMilestone)

	v.SetDefault("engine.limits.lessons_per_day", 5)
	v.SetDefault("engine.limits.arena_games_per_day", 3)

	curve := leveling.DefaultCurve()
	v.SetDefault("engine.curve.base_xp_per_level", curve.BaseXPPerLevel)
	v.SetDefault("engine.curve.xp_growth_percent_per_level", curve.XPGrowthPercentPerLevel)
	v.SetDefault("engine.curve.max_level", curve.MaxLevel)

	v.SetDefault("engine.swap_retries", 5)
}
