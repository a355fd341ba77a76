package main

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

// createLogger builds the process logger. Text goes through tint for
// terminals; json is meant for log collectors.
func createLogger(level, format string) *slog.Logger {
	lvl := parseLogLevel(level)
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: lvl,
		}))
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      lvl,
		TimeFormat: "15:04:05.000",
	}))
}

// parseLogLevel converts string log level to slog.Level
func parseLogLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
