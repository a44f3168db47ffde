package config

import (
	"flag"
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// Flags holds command-line flag values.
type Flags struct {
	ConfigPath  string
	PatchFormat string
	GitDir      string
	LogLevel    string
	Debug       bool
	Args        []string // positional mbox/Maildir paths
}

// ParseFlags parses command-line flags and returns a Flags struct.
func ParseFlags() *Flags {
	f := &Flags{}

	flag.StringVar(&f.ConfigPath, "config", "./gitam.toml", "Path to configuration file")
	flag.StringVar(&f.PatchFormat, "patch-format", "", "Patch format: mbox (detected when unset)")
	flag.StringVar(&f.GitDir, "gitdir", "", "Repository metadata directory")
	flag.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&f.Debug, "debug", false, "Shorthand for --log-level=debug")

	flag.Parse()
	f.Args = flag.Args()
	return f
}

// Load parses a TOML configuration file and returns the Config.
// If the file does not exist, returns the default configuration.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file: %w", err)
	}

	var fileConfig FileConfig
	if err := toml.Unmarshal(data, &fileConfig); err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}

	cfg = mergeAdviceConfig(cfg, fileConfig.Advice)
	cfg = mergeConfig(cfg, fileConfig.Gitam)

	return cfg, nil
}

// ApplyFlags merges command-line flag values into the config.
// Non-zero/non-empty flag values override config file values.
func ApplyFlags(cfg Config, f *Flags) Config {
	if f.GitDir != "" {
		cfg.GitDir = f.GitDir
	}

	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}

	if f.Debug {
		cfg.LogLevel = "debug"
	}

	return cfg
}

// LoadWithFlags loads configuration from the path specified in flags,
// then applies flag overrides.
func LoadWithFlags(f *Flags) (Config, error) {
	cfg, err := Load(f.ConfigPath)
	if err != nil {
		return cfg, err
	}
	return ApplyFlags(cfg, f), nil
}

func mergeAdviceConfig(dst Config, src AdviceConfig) Config {
	if src.AmWorkDir != nil {
		dst.AdviceAmWorkdir = *src.AmWorkDir
	}
	return dst
}

func mergeConfig(dst, src Config) Config {
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}

	if src.GitDir != "" {
		dst.GitDir = src.GitDir
	}

	if src.ReflogAction != "" {
		dst.ReflogAction = src.ReflogAction
	}

	if src.Metrics.Enabled {
		dst.Metrics.Enabled = src.Metrics.Enabled
	}
	if src.Metrics.Address != "" {
		dst.Metrics.Address = src.Metrics.Address
	}
	if src.Metrics.Path != "" {
		dst.Metrics.Path = src.Metrics.Path
	}

	return dst
}
