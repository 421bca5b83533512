// Package logging provides the shared diagnostic logger. Log output goes to
// stderr so it never mixes with formatted call output on stdout.
package logging

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var logger zerolog.Logger

func init() {
	// Quiet by default: formatted call output is the product, diagnostics
	// are opt-in via --debug or RIPOSTE_LOG.
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger()

	if levelStr := os.Getenv("RIPOSTE_LOG"); levelStr != "" {
		if level, err := zerolog.ParseLevel(strings.ToLower(levelStr)); err == nil {
			zerolog.SetGlobalLevel(level)
		}
	}
}

// Logger returns the package logger.
func Logger() zerolog.Logger {
	return logger
}

// EnableDebug lowers the global level to debug.
func EnableDebug() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}
