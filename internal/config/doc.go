// Package config loads, normalizes, and validates puppetmask configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the PUPPETMASK_API_TOKEN
// environment fallback. The Config type centralizes every knob the daemon and
// CLI need: bucket and cache locations, ffmpeg frame extraction, editor
// thresholds and reconstruction tuning.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
