// Package config loads, normalizes, and validates reelbase configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OMDB_API_KEY (including a .env file in the working directory). The Config
// type centralizes every knob the CLI needs so input paths, the enrichment
// cache location, and API credentials are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
