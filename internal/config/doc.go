// Package config loads, normalizes, and validates setlint configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the CLI needs: output and log directories, analysis thresholds, the
// orphan-bus name table, and run-history settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
