// Package config loads cadence configuration from .cadence/config.yaml and
// merges it with CLI flags. Flags take precedence over the file; the file
// takes precedence over defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the config file location relative to the working
// directory.
const DefaultConfigPath = ".cadence/config.yaml"

// ClassifierConfig overrides the validation output classification tokens.
// Empty fields keep the cargo-shaped defaults.
type ClassifierConfig struct {
	// TestPassTokens are trailing status tokens marking a passing check.
	TestPassTokens []string `yaml:"test_pass_tokens"`

	// TestFailTokens are trailing status tokens marking a failing check.
	TestFailTokens []string `yaml:"test_fail_tokens"`

	// TestSummaryPrefix identifies the trailing summary line.
	TestSummaryPrefix string `yaml:"test_summary_prefix"`

	// LintWarningTokens are leading severity tokens counted as warnings.
	LintWarningTokens []string `yaml:"lint_warning_tokens"`

	// LintErrorTokens are leading severity tokens counted as errors.
	LintErrorTokens []string `yaml:"lint_error_tokens"`
}

// HistoryConfig controls the run-history journal.
type HistoryConfig struct {
	// Enabled turns the journal on.
	Enabled bool `yaml:"enabled"`

	// DBPath is the SQLite database location.
	DBPath string `yaml:"db_path"`
}

// Config holds all cadence settings.
type Config struct {
	// LedgerPath is the task ledger document.
	LedgerPath string `yaml:"ledger_path"`

	// PolicyPath optionally points at a policy document composed into every
	// payload. Empty uses the built-in policy.
	PolicyPath string `yaml:"policy_path"`

	// DocRefs are paths or identifiers listed as reference documents in the
	// payload.
	DocRefs []string `yaml:"doc_refs"`

	// TestCommand and LintCommand are the validation commands, run via the
	// shell once per iteration.
	TestCommand string `yaml:"test_command"`
	LintCommand string `yaml:"lint_command"`

	// BlockingSections are heading titles whose sections must be drained
	// before any other section's entries are eligible.
	BlockingSections []string `yaml:"blocking_sections"`

	// Sentinel is the completion marker expected in the agent's terminal
	// result when no eligible work remains.
	Sentinel string `yaml:"sentinel"`

	// AgentBinary is the coding agent CLI binary; AgentArgs are appended to
	// the standard invocation flags.
	AgentBinary string   `yaml:"agent_binary"`
	AgentArgs   []string `yaml:"agent_args"`

	// WorkDir is the governed tree. Empty means the current directory.
	WorkDir string `yaml:"work_dir"`

	// LogLevel sets console verbosity (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	Classifier ClassifierConfig `yaml:"classifier"`
	History    HistoryConfig    `yaml:"history"`
}

// DefaultConfig returns a Config with the defaults for a cargo workspace.
func DefaultConfig() *Config {
	return &Config{
		LedgerPath:       "TODO.md",
		TestCommand:      "cargo test --workspace",
		LintCommand:      "cargo clippy --workspace --message-format short 2>&1",
		BlockingSections: []string{"Blockers"},
		Sentinel:         "ALL_TASKS_COMPLETE",
		AgentBinary:      "claude",
		LogLevel:         "info",
		History: HistoryConfig{
			Enabled: true,
			DBPath:  ".cadence/history.db",
		},
	}
}

// LoadConfig loads configuration from path. A missing file returns defaults
// without error; a malformed file is an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadConfigFromDir loads DefaultConfigPath relative to dir.
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, DefaultConfigPath))
}

// MergeWithFlags overlays non-nil flag values onto the config.
func (c *Config) MergeWithFlags(ledgerPath, logLevel *string) {
	if ledgerPath != nil && *ledgerPath != "" {
		c.LedgerPath = *ledgerPath
	}
	if logLevel != nil && *logLevel != "" {
		c.LogLevel = *logLevel
	}
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	if c.LedgerPath == "" {
		return fmt.Errorf("ledger_path must not be empty")
	}
	if c.TestCommand == "" {
		return fmt.Errorf("test_command must not be empty")
	}
	if c.LintCommand == "" {
		return fmt.Errorf("lint_command must not be empty")
	}
	if c.Sentinel == "" {
		return fmt.Errorf("sentinel must not be empty")
	}
	if c.AgentBinary == "" {
		return fmt.Errorf("agent_binary must not be empty")
	}
	if c.History.Enabled && c.History.DBPath == "" {
		return fmt.Errorf("history.db_path must not be empty when history is enabled")
	}
	return nil
}

// StateDir returns the .cadence directory for this working tree, used for
// the run lock and the history database.
func (c *Config) StateDir() string {
	return filepath.Join(c.WorkDir, ".cadence")
}
