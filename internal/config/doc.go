// Package config loads, normalizes, and validates the greenroom TOML
// configuration file.
package config
