// Package config loads, normalizes, and validates Garimpeiro configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the GARIMPEIRO_CNPJ environment
// fallback for the reference taxpayer. The Config type centralizes every knob
// the CLI needs, from archive limits to the ledger column layout.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, digits-only identifiers, and clear validation errors.
package config
