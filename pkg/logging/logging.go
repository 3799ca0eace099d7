/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

package logging

import (
	"log"
	"log/slog"
	"os"
	"strings"
)

// envLogLevel is the environment variable used to configure log verbosity
// when no explicit level is provided.
const envLogLevel = "LOG_LEVEL"

// ParseLevel converts a textual log level to slog.Level. Unknown or empty
// values default to Info.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewStructuredLogger creates a JSON slog.Logger writing to stderr with
// module and version context attached to every record. Source location is
// included when the level is debug.
func NewStructuredLogger(module, version, level string) *slog.Logger {
	lvl := ParseLevel(level)

	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	})

	return slog.New(handler).With(
		"module", module,
		"version", version,
	)
}

// SetDefaultStructuredLogger configures the process-wide default logger
// using the LOG_LEVEL environment variable for verbosity.
func SetDefaultStructuredLogger(module, version string) {
	SetDefaultStructuredLoggerWithLevel(module, version, os.Getenv(envLogLevel))
}

// SetDefaultStructuredLoggerWithLevel configures the process-wide default
// logger with an explicit level, overriding LOG_LEVEL.
func SetDefaultStructuredLoggerWithLevel(module, version, level string) {
	if strings.TrimSpace(level) == "" {
		level = os.Getenv(envLogLevel)
	}
	slog.SetDefault(NewStructuredLogger(module, version, level))
}

// NewLogLogger returns a standard library *log.Logger that forwards to the
// default slog handler at the given level. Useful for libraries that only
// accept *log.Logger.
func NewLogLogger(level slog.Level, addSource bool) *log.Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: addSource,
	})
	return slog.NewLogLogger(handler, level)
}
