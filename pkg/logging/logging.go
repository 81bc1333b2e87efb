// Package logging builds the process logger from configuration.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/artpar/apiquery/config"
	"github.com/rs/zerolog"
)

// New creates a zerolog logger writing to w. "console" format renders human
// readable lines; anything else writes JSON. The level is applied globally so
// that a config reload can change it with SetLevel.
func New(cfg config.LoggingConfig, w io.Writer) zerolog.Logger {
	SetLevel(cfg.Level)

	if strings.EqualFold(cfg.Format, "console") {
		output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}

	return zerolog.New(w).With().Timestamp().Logger()
}

// SetLevel sets the global log level. Unknown levels fall back to info.
func SetLevel(level string) zerolog.Level {
	lvl := ParseLevel(level)
	zerolog.SetGlobalLevel(lvl)
	return lvl
}

// ParseLevel parses a level name, falling back to info.
func ParseLevel(level string) zerolog.Level {
	if level == "" {
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
