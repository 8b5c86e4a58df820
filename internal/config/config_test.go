package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LedgerPath != "TODO.md" {
		t.Errorf("unexpected default ledger path %q", cfg.LedgerPath)
	}
	if cfg.Sentinel != "ALL_TASKS_COMPLETE" {
		t.Errorf("unexpected default sentinel %q", cfg.Sentinel)
	}
	if len(cfg.BlockingSections) != 1 || cfg.BlockingSections[0] != "Blockers" {
		t.Errorf("unexpected blocking sections %v", cfg.BlockingSections)
	}
	if !cfg.History.Enabled {
		t.Error("history should be enabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing config should not error: %v", err)
	}
	if cfg.TestCommand != "cargo test --workspace" {
		t.Errorf("expected default test command, got %q", cfg.TestCommand)
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `ledger_path: docs/CONVERSION.md
test_command: cargo test -p core
blocking_sections:
  - Blockers
  - Must fix first
classifier:
  test_summary_prefix: "results:"
history:
  enabled: false
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.LedgerPath != "docs/CONVERSION.md" {
		t.Errorf("ledger_path not applied: %q", cfg.LedgerPath)
	}
	if cfg.TestCommand != "cargo test -p core" {
		t.Errorf("test_command not applied: %q", cfg.TestCommand)
	}
	if len(cfg.BlockingSections) != 2 {
		t.Errorf("blocking_sections not applied: %v", cfg.BlockingSections)
	}
	if cfg.Classifier.TestSummaryPrefix != "results:" {
		t.Errorf("classifier override not applied: %q", cfg.Classifier.TestSummaryPrefix)
	}
	if cfg.History.Enabled {
		t.Error("history.enabled override not applied")
	}
	// Untouched fields keep their defaults.
	if cfg.Sentinel != "ALL_TASKS_COMPLETE" {
		t.Errorf("sentinel default lost: %q", cfg.Sentinel)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("ledger_path: [unclosed"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected an error for malformed yaml")
	}
}

func TestMergeWithFlags(t *testing.T) {
	cfg := DefaultConfig()
	ledger := "PLAN.md"
	level := "debug"
	empty := ""

	cfg.MergeWithFlags(&ledger, &level)
	if cfg.LedgerPath != "PLAN.md" || cfg.LogLevel != "debug" {
		t.Errorf("flags not applied: %q / %q", cfg.LedgerPath, cfg.LogLevel)
	}

	cfg.MergeWithFlags(&empty, nil)
	if cfg.LedgerPath != "PLAN.md" {
		t.Error("empty flag should not clobber the config value")
	}
}

func TestValidateRejectsEmptyFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"ledger", func(c *Config) { c.LedgerPath = "" }},
		{"test command", func(c *Config) { c.TestCommand = "" }},
		{"lint command", func(c *Config) { c.LintCommand = "" }},
		{"sentinel", func(c *Config) { c.Sentinel = "" }},
		{"agent binary", func(c *Config) { c.AgentBinary = "" }},
		{"history path", func(c *Config) { c.History.DBPath = "" }},
	}
	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected a validation error", tc.name)
		}
	}
}

func TestStateDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WorkDir = "/tmp/project"
	if got := cfg.StateDir(); got != "/tmp/project/.cadence" {
		t.Errorf("unexpected state dir %q", got)
	}
}
