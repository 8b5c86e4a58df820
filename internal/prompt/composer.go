// Package prompt builds the single instruction payload handed to the agent
// each iteration. Compose is a pure function: identical inputs produce a
// byte-identical payload, with no I/O and no side effects.
package prompt

import (
	"fmt"
	"strings"

	"github.com/harrison/cadence/internal/validation"
)

// Mode selects the workflow instructions composed into the payload. The two
// modes are mutually exclusive: discovery only records new ledger entries and
// never edits code; implement edits code for exactly one task and commits.
type Mode int

const (
	ModeImplement Mode = iota
	ModeDiscover
)

// String returns the flag-style name of the mode.
func (m Mode) String() string {
	if m == ModeDiscover {
		return "discover"
	}
	return "implement"
}

// DefaultSentinel is the fixed marker whose presence anywhere in the agent's
// terminal result means "no further eligible work".
const DefaultSentinel = "ALL_TASKS_COMPLETE"

// DefaultPolicy is the standing policy header used when no policy document is
// configured.
const DefaultPolicy = `You are working inside a checked-out repository governed by a task ledger.
Follow the workflow instructions below exactly. Work only on what they
authorize. Keep the ledger document well-formed: checkbox entries, one per
line, under their existing section headings.`

// Task is the current-task context composed into an implement-mode payload.
type Task struct {
	Section     string
	Description string
	Category    string
	Source      string
	Notes       []string
}

// Inputs are the ingredients of one payload.
type Inputs struct {
	Policy   string
	DocRefs  []string
	Mode     Mode
	Task     *Task // nil in discovery mode
	Snapshot validation.Snapshot
	Sentinel string
}

const implementWorkflow = `## Workflow: implement and commit

1. Address exactly ONE ledger task: the current task shown below. Do not
   start, partially address, or reorder any other task.
2. Edit the code until the task is done and the validation feedback below is
   addressed or explained.
3. Flip the task's checkbox to done in the ledger document.
4. Make exactly one atomic commit for this task. The commit message must
   reference the task. Never record the automation agent as commit author or
   co-author; use the repository's configured human identity.`

const discoverWorkflow = `## Workflow: observe-only discovery

1. Read the code and the validation feedback below. Do NOT edit any source
   file and do NOT commit.
2. Record newly discovered work as pending checkbox entries in the ledger
   document, under the blocking section when the work gates other tasks.
3. Do not duplicate an entry that already exists in the target section, and
   do not remove or reorder existing entries.`

// Compose builds the payload: policy header, document references, workflow
// instructions for the mode, current task, validation snapshot, sentinel
// contract. Deterministic string construction only.
func Compose(in Inputs) string {
	var sb strings.Builder

	policy := in.Policy
	if policy == "" {
		policy = DefaultPolicy
	}
	sentinel := in.Sentinel
	if sentinel == "" {
		sentinel = DefaultSentinel
	}

	sb.WriteString(policy)
	sb.WriteString("\n\n")

	if len(in.DocRefs) > 0 {
		sb.WriteString("## Reference documents\n\n")
		for _, ref := range in.DocRefs {
			fmt.Fprintf(&sb, "- %s\n", ref)
		}
		sb.WriteString("\n")
	}

	if in.Mode == ModeDiscover {
		sb.WriteString(discoverWorkflow)
	} else {
		sb.WriteString(implementWorkflow)
	}
	sb.WriteString("\n\n")

	if in.Mode == ModeImplement && in.Task != nil {
		sb.WriteString("## Current task\n\n")
		if in.Task.Section != "" {
			fmt.Fprintf(&sb, "Section: %s\n", in.Task.Section)
		}
		if in.Task.Category != "" {
			fmt.Fprintf(&sb, "Category: %s\n", in.Task.Category)
		}
		fmt.Fprintf(&sb, "Task: %s\n", in.Task.Description)
		if in.Task.Source != "" {
			fmt.Fprintf(&sb, "Origin: %s\n", in.Task.Source)
		}
		for _, note := range in.Task.Notes {
			fmt.Fprintf(&sb, "Note: %s\n", note)
		}
		sb.WriteString("\n")
	}

	sb.WriteString(formatSnapshot(in.Snapshot))
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "## Completion\n\nIf no eligible work remains, reply with the exact marker %s in your final answer and change nothing.\n", sentinel)

	return sb.String()
}

// formatSnapshot renders the validation snapshot section of the payload.
func formatSnapshot(snap validation.Snapshot) string {
	var sb strings.Builder
	sb.WriteString("## Validation feedback\n\n")

	if snap.TestToolFailed {
		sb.WriteString("Tests: TOOL FAILED (the test command produced no usable output)\n")
	} else {
		fmt.Fprintf(&sb, "Tests: %d passed, %d failed\n", snap.Passed, snap.Failed)
		if snap.TestSummary != "" {
			fmt.Fprintf(&sb, "Summary: %s\n", snap.TestSummary)
		}
		for _, name := range snap.FailingChecks {
			fmt.Fprintf(&sb, "Failing: %s\n", name)
		}
	}
	if snap.FailureDetail != "" {
		fmt.Fprintf(&sb, "\n```\n%s\n```\n", snap.FailureDetail)
	}

	if snap.LintToolFailed {
		sb.WriteString("Lint: TOOL FAILED (the lint command produced no usable output)\n")
	} else {
		fmt.Fprintf(&sb, "Lint: %d warnings, %d errors\n", snap.Warnings, snap.Errors)
		if snap.LintExcerpt != "" {
			fmt.Fprintf(&sb, "\n```\n%s\n```\n", snap.LintExcerpt)
		}
	}

	return sb.String()
}
