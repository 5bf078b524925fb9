// Package config loads, normalizes, and validates the luffe configuration.
//
// Configuration lives in a TOML file (~/.config/luffe/config.toml by default)
// with secrets overridable from the environment so tokens never need to be
// committed to disk. Load returns a fully expanded config; callers should not
// re-expand paths or re-read environment variables themselves.
package config
