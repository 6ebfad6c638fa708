// Package logging constructs the slog loggers used across Shutter.
//
// It offers a human-oriented console handler and a JSON handler with
// normalized keys, helpers for building attributes, and a no-op logger for
// tests. Loggers write to stdout/stderr plus the configured log file.
package logging
