// Package logging assembles structured slog loggers and formatting helpers
// used across shutter components.
//
// It owns the configurable console/JSON handlers, centralizes level and
// output plumbing, and exposes typed attribute helpers so analyzer and CLI
// code emit log lines with a consistent shape. The package also provides a
// no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// tags lines with the same component/field conventions.
package logging
