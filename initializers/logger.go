package initializers

import (
	"log/slog"
	"os"
)

// NewLogger returns the process JSON logger and installs it as the slog default.
func NewLogger(cfg *Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With("service", "storefront")
	slog.SetDefault(logger)
	return logger
}
