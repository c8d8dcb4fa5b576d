// Package log configures the process-wide structured logger.
package log

import (
	"log/slog"
	"os"
	"strings"
)

// Setup installs the default slog logger at the given level. The LOG_FORMAT
// environment variable switches to JSON output for log collectors; anything
// else keeps the text handler.
func Setup(logLevel string) {
	options := &slog.HandlerOptions{Level: ParseLevel(logLevel)}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, options)
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}

	slog.SetDefault(slog.New(handler))
}

// ParseLevel maps a level name onto a slog level, defaulting to info for
// anything unrecognized.
func ParseLevel(logLevel string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return slog.LevelInfo
	}

	return level
}

// WithModule returns the default logger tagged with the module name. Every
// subsystem logs through one of these so records are filterable by module.
func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
