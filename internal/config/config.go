// Package config provides configuration management for gitam.
package config

import (
	"errors"
	"fmt"
)

// FileConfig is the top-level wrapper for the configuration file, mirroring
// the shared/specific split a real git installation uses between system-wide
// and command-specific settings.
type FileConfig struct {
	Advice AdviceConfig `toml:"advice"`
	Gitam  Config       `toml:"gitam"`
}

// AdviceConfig mirrors git's [advice] section. Only the single knob gitam
// consults is modeled here.
type AdviceConfig struct {
	AmWorkDir *bool `toml:"amworkdir"`
}

// Config holds gitam's own configuration.
type Config struct {
	// AdviceAmWorkdir controls whether the session directory hint (spec.md
	// §6 "advice.amworkdir") is printed on resumable failures. Defaults to
	// true.
	AdviceAmWorkdir bool `toml:"advice_amworkdir"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	// GitDir is the repository metadata directory the session directory is
	// rooted under (<gitdir>/rebase-apply).
	GitDir string `toml:"gitdir"`

	// ReflogAction overrides GIT_REFLOG_ACTION when the environment variable
	// is unset.
	ReflogAction string `toml:"reflog_action"`

	Metrics MetricsConfig `toml:"metrics"`
}

// MetricsConfig holds configuration for Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Address string `toml:"address"`
	Path    string `toml:"path"`
}

// Default returns a Config with sensible default values.
func Default() Config {
	return Config{
		AdviceAmWorkdir: true,
		LogLevel:        "info",
		GitDir:          ".git",
		ReflogAction:    "am",
		Metrics: MetricsConfig{
			Enabled: false,
			Address: ":9101",
			Path:    "/metrics",
		},
	}
}

// Validate checks that the configuration is valid and returns an error if not.
func (c *Config) Validate() error {
	if c.GitDir == "" {
		return errors.New("gitdir is required")
	}

	if !isValidLogLevel(c.LogLevel) {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}

	if c.Metrics.Enabled {
		if c.Metrics.Address == "" {
			return errors.New("metrics address is required when metrics are enabled")
		}
		if c.Metrics.Path == "" {
			return errors.New("metrics path is required when metrics are enabled")
		}
	}

	return nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}
