// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New() initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import "github.com/okian/pinsight/internal/domain/alert"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// PolicyFile optionally points at a YAML policy-timeline file. Empty
	// means the built-in timeline is used.
	PolicyFile string `koanf:"policy_file"`

	// MaxUploadBytes caps the POST /records request body.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// DedupeSize bounds the duplicate-record tracker.
	DedupeSize int `koanf:"dedupe_size"`

	// Alerts holds the initial alert thresholds; analysts can change them
	// at runtime through the API.
	Alerts alert.Config `koanf:"alerts"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		Addr:           ":9090",
		PolicyFile:     "",
		MaxUploadBytes: 32 << 20, // 32 MiB
		DedupeSize:     100_000,
		Alerts:         alert.DefaultConfig(),
	}
}
