// Package config loads, normalizes, and validates Shutter configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and clamps capture and queue limits into
// their documented ranges. The Config type centralizes every knob the daemon
// and CLI need, from screenshot quality to retention horizons.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
