// Package logging assembles the structured slog loggers used across
// stashbatch.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes attr helpers plus standardized field keys so the
// runner, resolver, and bridge tag log lines consistently. A no-op logger is
// provided for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
