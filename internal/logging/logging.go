// Package logging builds the console logger used by the CLI.
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewConsoleLogger returns a logger writing human-readable output to w.
func NewConsoleLogger(w io.Writer) zerolog.Logger {
	console := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	return zerolog.New(console).With().Timestamp().Logger()
}

// ParseLevel maps a level name such as "debug" or "warn" to its
// zerolog level.
func ParseLevel(name string) (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("unknown log level %q", name)
	}
	return level, nil
}
