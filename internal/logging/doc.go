// Package logging assembles structured slog loggers and formatting helpers used
// across the transcode drivers.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so driver code can automatically
// tag log lines with run IDs, media kinds, and source files. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
