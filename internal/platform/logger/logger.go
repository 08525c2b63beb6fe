package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/phrazzld/scry-quest/internal/config"
)

// ParseLevel maps a configured level name onto a slog level. Unknown names
// report false and yield info.
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// New builds a logger writing to w according to cfg.
func New(w io.Writer, cfg config.LogConfig) *slog.Logger {
	level, ok := ParseLevel(cfg.Level)
	if !ok {
		// Use the default handler (text output to stderr) for the warning.
		tmpLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		tmpLogger.Warn("invalid log level configured, using default level",
			"configured_level", cfg.Level,
			"default_level", "info")
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

// Setup initializes the application's logging system. It builds a logger on
// w, normally stderr so command output on stdout stays clean, and installs it
// as the slog default.
func Setup(w io.Writer, cfg config.LogConfig) (*slog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	logger := New(w, cfg)
	slog.SetDefault(logger)
	return logger, nil
}
