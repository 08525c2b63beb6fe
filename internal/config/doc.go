// Package config loads and validates application configuration.
//
// Values come from built-in defaults, an optional config.yaml and environment
// variables prefixed with QUEST_ (nested keys joined by underscores, e.g.
// QUEST_ENGINE_LIMITS_LESSONS_PER_DAY). The loaded Config is checked with
// go-playground/validator struct tags before it is returned.
package config
