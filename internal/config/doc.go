// Package config loads, normalizes, and validates lemmekk configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type gathers every knob the
// planner and CLI need: which sources to scan, which extensions to skip,
// whether steganographic carving runs, where the token database lives, and
// how logs are shaped.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
