// Package logs locates per-run log files and reads them back for the CLI.
//
// Run logs are JSON lines written by the logging package, one file per run.
// List and Find resolve a run by its short id; Tail returns the last lines
// of a file, optionally filtered by pair, event type or minimum level, with
// bounded memory usage.
package logs
