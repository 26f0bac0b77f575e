// Package config loads, normalizes, and validates shutter configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. Every forensic policy knob — entropy
// thresholds, ELA quality and detection threshold, pattern run lengths,
// embedded-object scan window — lives here rather than as ad hoc constants
// scattered across the analysis packages, so callers can override policy
// without touching the engine.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
