// Package logging provides structured logging for the placement tooling using
// zerolog. Console output is used when stderr is a terminal and JSON
// otherwise, so the same binary works interactively and under a supervisor.
//
// Example usage:
//
//	ctx := logging.WithDrive(ctx, driveID)
//	logging.FromContext(ctx).Debug().Int("jobs", n).Msg("Drive loaded")
package logging

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// defaultLogger is configured from LOG_LEVEL, DEBUG and LOG_FORMAT.
var defaultLogger = NewLoggerFromConfig(envConfig())

// Default returns the default global logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the default logger and the zerolog global logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// Warn starts a warning on the default logger, for code that has no
// context to take a logger from.
func Warn() *zerolog.Event {
	return defaultLogger.Warn()
}

// stderrIsTerminal reports whether stderr is attached to a terminal.
func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
