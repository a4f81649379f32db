// Package logging assembles structured slog loggers and formatting helpers used
// across saaqreg.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so resolution code can tag log
// lines with the run ID, pair key, and stage. A run can tee its output to a
// JSON log file under the configured log directory while the console keeps the
// human-friendly format. The package also provides a no-op logger for tests.
package logging
