// Package config handles configuration management for guiderails.
// It layers embedded defaults, a guiderails.yml/.yaml/.toml discovered by
// walking up from the working directory, GUIDERAILS_* environment
// variables, and command-line flags.
package config
