// Package logging builds the slog loggers used across podboost.
//
// It provides a console handler for interactive use, a JSON handler for log
// files and machine consumption, typed attribute helpers, standardized field
// names for correlation (check IDs, components, episodes), and retention
// cleanup for per-run daemon log files.
package logging
