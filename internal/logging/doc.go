// Package logging builds slog loggers for the CLI and exposes small helpers
// for structured attributes so call sites stay terse and consistent.
//
// Two output formats exist: a human console format with colored levels and a
// JSON format for machine consumption. Components obtain child loggers via
// NewComponentLogger so every record carries a stable component field.
package logging
