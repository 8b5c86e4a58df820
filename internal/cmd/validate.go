package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/cadence/internal/config"
	"github.com/harrison/cadence/internal/ledger"
)

// NewValidateCommand creates the validate command
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <ledger-file>",
		Short: "Parse-check a ledger document",
		Long: `Parse a ledger document and report its sections, entry counts and the
current task, without running any iterations.`,
		Args: cobra.ExactArgs(1),
		RunE: validateCommand,
	}

	cmd.Flags().StringSlice("blocking", nil, "Section titles treated as blocking (default: Blockers)")

	return cmd
}

func validateCommand(cmd *cobra.Command, args []string) error {
	blocking, _ := cmd.Flags().GetStringSlice("blocking")
	if len(blocking) == 0 {
		blocking = config.DefaultConfig().BlockingSections
	}

	led, err := ledger.Load(args[0], ledger.NewParser(blocking...))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	completed, remaining := led.Counts()
	fmt.Fprintf(out, "Ledger: %s\n", args[0])
	if led.Title != "" {
		fmt.Fprintf(out, "Title: %s\n", led.Title)
	}
	fmt.Fprintf(out, "Sections: %d\n", len(led.Sections))
	for _, sec := range led.Sections {
		marker := ""
		if sec.Blocking {
			marker = " (blocking)"
		}
		title := sec.Title
		if title == "" {
			title = "(unnamed)"
		}
		fmt.Fprintf(out, "  %s%s: %d entries\n", title, marker, len(sec.Entries))
	}
	fmt.Fprintf(out, "Completed: %d\nRemaining: %d\n", completed, remaining)

	if pos, ok := led.FindFirstPending(); ok {
		entry := led.EntryAt(pos)
		fmt.Fprintf(out, "Current task: %s\n", entry.Description)
	} else {
		fmt.Fprintln(out, "Current task: none (ledger exhausted)")
	}

	return nil
}
