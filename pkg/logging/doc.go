// Package logging provides structured logging utilities for findeploy.
//
// # Overview
//
// This package wraps the standard library slog package with defaults and
// conventions shared by every findeploy command. It supports environment-based
// log level configuration, module/version context injection, and automatic
// source location tracking for debug logs.
//
// # Log Levels
//
// Supported log levels (case-insensitive):
//   - DEBUG: Detailed diagnostic information with source location
//   - INFO: General informational messages (default)
//   - WARN/WARNING: Warning messages for potentially problematic situations
//   - ERROR: Error messages for failures requiring attention
//
// # Usage
//
// Setting the default logger (recommended):
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("findeploy", version)
//
//	    slog.Info("provision starting", "env", "dev")
//	    slog.Error("terraform apply failed", "error", err)
//	}
//
// Setting explicit log level:
//
//	logging.SetDefaultStructuredLoggerWithLevel("findeploy", version, "warn")
//
// # Environment Configuration
//
// The LOG_LEVEL environment variable controls logging verbosity:
//
//	LOG_LEVEL=debug findeploy verify --env dev
//
// If LOG_LEVEL is not set, defaults to INFO level.
//
// # Output Format
//
// All logs are written to stderr in JSON format:
//
//	{
//	    "time": "2026-01-15T10:30:00.123Z",
//	    "level": "INFO",
//	    "msg": "bootstrap completed",
//	    "module": "findeploy",
//	    "version": "v1.0.0",
//	    "env": "dev"
//	}
package logging
