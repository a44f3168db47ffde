package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}

	expected := Default()
	if cfg.LogLevel != expected.LogLevel {
		t.Errorf("expected log_level %q, got %q", expected.LogLevel, cfg.LogLevel)
	}
}

func TestLoadValidTOML(t *testing.T) {
	content := `
[advice]
amworkdir = false

[gitam]
log_level = "debug"
gitdir = "/repo/.git"
reflog_action = "cherry-pick"

[gitam.metrics]
enabled = true
address = ":9200"
path = "/custom-metrics"
`

	path := createTempConfig(t, content)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.AdviceAmWorkdir {
		t.Errorf("advice_amworkdir = true, want false")
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("log_level = %q, want 'debug'", cfg.LogLevel)
	}

	if cfg.GitDir != "/repo/.git" {
		t.Errorf("gitdir = %q, want '/repo/.git'", cfg.GitDir)
	}

	if cfg.ReflogAction != "cherry-pick" {
		t.Errorf("reflog_action = %q, want 'cherry-pick'", cfg.ReflogAction)
	}

	if !cfg.Metrics.Enabled {
		t.Errorf("metrics.enabled = false, want true")
	}

	if cfg.Metrics.Address != ":9200" {
		t.Errorf("metrics.address = %q, want ':9200'", cfg.Metrics.Address)
	}

	if cfg.Metrics.Path != "/custom-metrics" {
		t.Errorf("metrics.path = %q, want '/custom-metrics'", cfg.Metrics.Path)
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	content := `
[gitam
gitdir = "broken
`

	path := createTempConfig(t, content)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid TOML, got nil")
	}
}

func TestLoadPartialConfig(t *testing.T) {
	content := `
[gitam]
gitdir = "/elsewhere/.git"
`

	path := createTempConfig(t, content)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.GitDir != "/elsewhere/.git" {
		t.Errorf("gitdir = %q, want '/elsewhere/.git'", cfg.GitDir)
	}

	defaults := Default()
	if cfg.LogLevel != defaults.LogLevel {
		t.Errorf("log_level = %q, want default %q", cfg.LogLevel, defaults.LogLevel)
	}
}

func TestLoadMetricsConfigPartial(t *testing.T) {
	content := `
[gitam.metrics]
enabled = true
`

	path := createTempConfig(t, content)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !cfg.Metrics.Enabled {
		t.Errorf("metrics.enabled = %v, want true", cfg.Metrics.Enabled)
	}

	defaults := Default()
	if cfg.Metrics.Address != defaults.Metrics.Address {
		t.Errorf("metrics.address = %q, want default %q", cfg.Metrics.Address, defaults.Metrics.Address)
	}
}

func TestApplyFlags(t *testing.T) {
	cfg := Default()

	flags := &Flags{
		GitDir:   "/flag/.git",
		LogLevel: "debug",
	}

	result := ApplyFlags(cfg, flags)

	if result.GitDir != "/flag/.git" {
		t.Errorf("gitdir = %q, want '/flag/.git'", result.GitDir)
	}

	if result.LogLevel != "debug" {
		t.Errorf("log_level = %q, want 'debug'", result.LogLevel)
	}
}

func TestApplyFlagsDebugOverridesLogLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "warn"

	flags := &Flags{Debug: true}
	result := ApplyFlags(cfg, flags)

	if result.LogLevel != "debug" {
		t.Errorf("log_level = %q, want 'debug' (--debug should override)", result.LogLevel)
	}
}

func TestApplyFlagsEmptyValuesDoNotOverride(t *testing.T) {
	cfg := Default()
	cfg.GitDir = "/original/.git"
	cfg.LogLevel = "warn"

	flags := &Flags{}

	result := ApplyFlags(cfg, flags)

	if result.GitDir != "/original/.git" {
		t.Errorf("gitdir = %q, want '/original/.git' (should not be overridden)", result.GitDir)
	}

	if result.LogLevel != "warn" {
		t.Errorf("log_level = %q, want 'warn' (should not be overridden)", result.LogLevel)
	}
}

func TestFlagPriorityOverConfig(t *testing.T) {
	content := `
[gitam]
gitdir = "/config/.git"
log_level = "info"
`

	path := createTempConfig(t, content)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	flags := &Flags{GitDir: "/flag/.git"}
	result := ApplyFlags(cfg, flags)

	if result.GitDir != "/flag/.git" {
		t.Errorf("gitdir = %q, want '/flag/.git' (flag should override)", result.GitDir)
	}

	if result.LogLevel != "info" {
		t.Errorf("log_level = %q, want 'info' (config value should remain)", result.LogLevel)
	}
}

func createTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to create temp config: %v", err)
	}
	return path
}
