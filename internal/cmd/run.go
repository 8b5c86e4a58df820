package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/harrison/cadence/internal/agent"
	"github.com/harrison/cadence/internal/config"
	"github.com/harrison/cadence/internal/filelock"
	"github.com/harrison/cadence/internal/history"
	"github.com/harrison/cadence/internal/ledger"
	"github.com/harrison/cadence/internal/logger"
	"github.com/harrison/cadence/internal/loop"
	"github.com/harrison/cadence/internal/prompt"
	"github.com/harrison/cadence/internal/validation"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <budget>",
		Short: "Drive the agent loop for up to <budget> iterations",
		Long: `Drive the agent loop against the configured ledger and validation commands.

The required budget argument is the maximum number of agent sessions to
spend. The loop may stop earlier when the ledger is exhausted or the agent
signals completion via the sentinel.

Configuration is loaded from .cadence/config.yaml if present. CLI flags
override configuration file settings.

Examples:
  cadence run 10                    # up to 10 implement-and-commit iterations
  cadence run 3 --discover          # observe-only discovery, never edits code
  cadence run 5 --ledger TODO.md    # explicit ledger document
  cadence run 5 --show-stream      # mirror agent output live`,
		Args: cobra.ExactArgs(1),
		RunE: runCommand,
	}

	cmd.Flags().Bool("discover", false, "Observe-only discovery mode: record new ledger entries, never edit code")
	cmd.Flags().String("config", "", "Path to config file (default: .cadence/config.yaml)")
	cmd.Flags().String("ledger", "", "Path to the ledger document (overrides config)")
	cmd.Flags().String("log-level", "", "Console log level (debug, info, warn, error)")
	cmd.Flags().Bool("show-stream", false, "Mirror the agent's incremental text to stdout")

	return cmd
}

// runCommand implements the run command logic
func runCommand(cmd *cobra.Command, args []string) error {
	budget, err := strconv.Atoi(args[0])
	if err != nil || budget < 1 {
		return fmt.Errorf("iteration budget must be a positive integer, got %q", args[0])
	}

	configPath, _ := cmd.Flags().GetString("config")
	var cfg *config.Config
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfigFromDir(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	ledgerFlag, _ := cmd.Flags().GetString("ledger")
	logLevelFlag, _ := cmd.Flags().GetString("log-level")
	cfg.MergeWithFlags(&ledgerFlag, &logLevelFlag)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.NewConsoleLogger(os.Stdout, cfg.LogLevel)

	lock, err := filelock.AcquireRun(cfg.StateDir())
	if err != nil {
		return err
	}
	defer lock.Release()

	discover, _ := cmd.Flags().GetBool("discover")
	mode := prompt.ModeImplement
	if discover {
		mode = prompt.ModeDiscover
	}

	policy := ""
	if cfg.PolicyPath != "" {
		data, err := os.ReadFile(cfg.PolicyPath)
		if err != nil {
			return fmt.Errorf("read policy document: %w", err)
		}
		policy = string(data)
	}

	var sink io.Writer
	if show, _ := cmd.Flags().GetBool("show-stream"); show {
		sink = os.Stdout
	}

	ctrl := &loop.Controller{
		Budget:     budget,
		Mode:       mode,
		LedgerPath: resolvePath(cfg.WorkDir, cfg.LedgerPath),
		Parser:     ledger.NewParser(cfg.BlockingSections...),
		Collector:  newCollector(cfg),
		Agent: &agent.ClaudeAgent{
			Binary:    cfg.AgentBinary,
			ExtraArgs: cfg.AgentArgs,
			WorkDir:   cfg.WorkDir,
			TextSink:  sink,
		},
		Policy:   policy,
		DocRefs:  cfg.DocRefs,
		Sentinel: cfg.Sentinel,
		Log:      log,
	}

	var store *history.Store
	runID := uuid.NewString()
	if cfg.History.Enabled {
		store, err = history.Open(resolvePath(cfg.WorkDir, cfg.History.DBPath))
		if err != nil {
			// The journal is observability only; degrade instead of refusing
			// to run.
			log.LogWarn(fmt.Sprintf("history disabled: %v", err))
		} else {
			defer store.Close()
			if err := store.StartRun(runID, mode.String()); err != nil {
				log.LogWarn(fmt.Sprintf("history: %v", err))
			}
			ctrl.Journal = store.Journal(runID)
		}
	}

	result, err := ctrl.Run(cmd.Context())
	if err != nil {
		return err
	}

	if store != nil {
		if err := store.FinishRun(runID, result.Reason.String(), result.Iterations); err != nil {
			log.LogWarn(fmt.Sprintf("history: %v", err))
		}
	}

	// Every stop reason exits 0, including budget exhaustion; only fatal
	// errors are non-zero.
	return nil
}

// newCollector wires the validation collector with configured token overrides.
func newCollector(cfg *config.Config) *validation.Collector {
	tests := validation.NewCargoTestClassifier()
	if len(cfg.Classifier.TestPassTokens) > 0 {
		tests.PassTokens = cfg.Classifier.TestPassTokens
	}
	if len(cfg.Classifier.TestFailTokens) > 0 {
		tests.FailTokens = cfg.Classifier.TestFailTokens
	}
	if cfg.Classifier.TestSummaryPrefix != "" {
		tests.SummaryPrefix = cfg.Classifier.TestSummaryPrefix
	}

	lint := validation.NewCargoLintClassifier()
	if len(cfg.Classifier.LintWarningTokens) > 0 {
		lint.WarningTokens = cfg.Classifier.LintWarningTokens
	}
	if len(cfg.Classifier.LintErrorTokens) > 0 {
		lint.ErrorTokens = cfg.Classifier.LintErrorTokens
	}

	return &validation.Collector{
		Runner:      &validation.ShellCommandRunner{WorkDir: cfg.WorkDir},
		TestCommand: cfg.TestCommand,
		LintCommand: cfg.LintCommand,
		Tests:       tests,
		Lint:        lint,
	}
}

func resolvePath(workDir, path string) string {
	if workDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(workDir, path)
}
