// Package log configures the process-wide slog logger. Every component
// derives its own logger through WithModule so log lines stay attributable.
package log

import (
	"log/slog"
	"os"
)

// Setup installs a text handler on stderr at the requested level. The level
// name is parsed the way slog spells them (debug, info, warn, error, with
// optional offsets like warn+2); anything unparseable falls back to info.
func Setup(logLevel string) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		level = slog.LevelInfo
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// WithModule returns the default logger tagged with a module attribute.
func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
