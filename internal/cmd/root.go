package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for cadence
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cadence",
		Short: "Task-gated iterative build loop",
		Long: `Cadence repeatedly invokes an autonomous coding agent to resolve entries
from a markdown task ledger, feeding each cycle's test and lint output back
to the agent as validation feedback.

Each iteration re-reads the ledger, runs the validation commands, composes a
single instruction payload, and drives one agent session. The loop stops when
the ledger is exhausted, the agent signals completion, or the iteration
budget is spent.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewValidateCommand())

	return cmd
}
