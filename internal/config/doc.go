// Package config loads, normalizes, and validates gcfpack configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files from ~/.config/gcfpack/config.toml or a
// project-local gcfpack.toml. Always obtain settings through this package so
// downstream code receives canonical log formats and clear validation
// errors.
package config
