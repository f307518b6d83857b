// Package logging assembles structured slog loggers and formatting helpers used
// across Garimpeiro commands.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so batch code can tag log lines
// with the batch identifier and kind. The package also provides a no-op
// logger for tests and wiring code that cannot fail.
//
// Log output goes to stderr and the log file; stdout is reserved for report
// tables so they can be piped.
package logging
