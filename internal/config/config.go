// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and XPTRACK_* env vars.
// - External errors are wrapped with this package's sentinel errors.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DefaultPeriod is the preset used when a progress query names none.
	DefaultPeriod string `koanf:"default_period"`

	// MaxGainsLimit caps GET /gains?limit.
	MaxGainsLimit int `koanf:"max_gains_limit"`

	// MaxSnapshotsPerAccount bounds stored history per account; 0 keeps everything.
	MaxSnapshotsPerAccount int `koanf:"max_snapshots_per_account"`

	// MetricsIntervalMS is the refresh period of background system metrics.
	MetricsIntervalMS int `koanf:"metrics_interval_ms"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		Addr:                   ":9080",
		DefaultPeriod:          "week",
		MaxGainsLimit:          100,
		MaxSnapshotsPerAccount: 0,
		MetricsIntervalMS:      10_000,
	}
}
