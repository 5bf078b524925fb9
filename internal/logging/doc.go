// Package logging assembles the structured slog loggers used across luffe.
//
// It owns the console/JSON handler plumbing, centralizes level and output
// selection, and exposes context-aware helpers so pipeline code can
// automatically tag log lines with event IDs, reel IDs, and correlation IDs.
// The package also provides a no-op logger for tests and wiring code that
// cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
