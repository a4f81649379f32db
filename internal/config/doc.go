// Package config loads, normalizes, and validates saaqreg configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SAAQREG_LLM_API_KEY. The Config type centralizes every threshold the
// resolver uses so candidate selection, validation and arbitration agree on
// one set of numbers.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical formats, and clear validation errors.
package config
