// Package config loads, normalizes, and validates stashbatch configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// STASHBATCH_API_KEY. The Config type centralizes every knob the daemon and
// CLI need: catalog and bridge endpoints, runner delays, reconciler timing,
// bundle sources, and notification settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical option values, and clear validation errors.
package config
