// Package logger builds the process-wide structured logger.
package logger

import (
	"log/slog"
	"os"
)

// Init constructs the logger, honoring the DEBUG switch, and installs it
// as the slog default so library code without an explicit logger still
// ends up on the same handler.
func Init() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") == "true" {
		level = slog.LevelDebug
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)
	return log
}
