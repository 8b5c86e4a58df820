// Package validation runs the external test and lint commands once per
// iteration and reduces their raw output to a compact snapshot. Validation
// failure is feedback for the agent, never a reason to abort: a command that
// fails outright folds into a zero-count snapshot with a tool-failed
// annotation.
package validation

import (
	"context"
	"os/exec"
	"strings"
)

// Snapshot is the reduced validation result for one iteration. It is captured
// fresh each cycle and never reused.
type Snapshot struct {
	Passed        int
	Failed        int
	FailingChecks []string
	FailureDetail string
	TestSummary   string

	Warnings    int
	Errors      int
	LintExcerpt string

	// TestToolFailed / LintToolFailed mark commands that produced nothing
	// classifiable rather than failing checks.
	TestToolFailed bool
	LintToolFailed bool
}

// ToolFailed reports whether either command failed as a tool.
func (s Snapshot) ToolFailed() bool {
	return s.TestToolFailed || s.LintToolFailed
}

// CommandRunner abstracts shell command execution for testability.
type CommandRunner interface {
	Run(ctx context.Context, command string) (output string, err error)
}

// ShellCommandRunner executes commands via the system shell.
type ShellCommandRunner struct {
	WorkDir string // working directory for commands (empty = current dir)
}

// Run executes a command via sh -c and returns combined stdout/stderr.
func (r *ShellCommandRunner) Run(ctx context.Context, command string) (string, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	if r.WorkDir != "" {
		cmd.Dir = r.WorkDir
	}
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// TestClassifier reduces test runner output to counts, failing-check names
// and failure detail. Implementations are tool-specific; the classification
// heuristics are configuration, not core logic.
type TestClassifier interface {
	Classify(output string) TestReport
}

// LintClassifier reduces linter output to warning/error counts and a short
// excerpt.
type LintClassifier interface {
	Classify(output string) LintReport
}

// TestReport is the classified result of one test command run.
type TestReport struct {
	Passed        int
	Failed        int
	FailingChecks []string
	Detail        string
	Summary       string
}

// LintReport is the classified result of one lint command run.
type LintReport struct {
	Warnings int
	Errors   int
	Excerpt  string
}

// Collector runs both validation commands synchronously and assembles a
// Snapshot. It applies no timeout of its own; it blocks for as long as the
// external commands run.
type Collector struct {
	Runner      CommandRunner
	TestCommand string
	LintCommand string
	Tests       TestClassifier
	Lint        LintClassifier
}

// Run executes the test command then the lint command and classifies their
// output. It never returns an error: command failure becomes a tool-failed
// annotation in the snapshot so the agent can react to it.
func (c *Collector) Run(ctx context.Context) Snapshot {
	var snap Snapshot

	out, err := c.Runner.Run(ctx, c.TestCommand)
	if strings.TrimSpace(out) == "" {
		snap.TestToolFailed = true
	} else {
		report := c.Tests.Classify(out)
		snap.Passed = report.Passed
		snap.Failed = report.Failed
		snap.FailingChecks = report.FailingChecks
		snap.FailureDetail = report.Detail
		snap.TestSummary = report.Summary
		if err != nil && report.Passed == 0 && report.Failed == 0 {
			// Non-zero exit with no classifiable checks: the tool never got
			// to running tests (e.g. a compile error). Surface the raw tail
			// so the agent sees why.
			snap.TestToolFailed = true
			snap.FailureDetail = tailLines(out, 40)
		}
	}

	out, err = c.Runner.Run(ctx, c.LintCommand)
	if strings.TrimSpace(out) == "" {
		// Clean lint output is often empty; only an accompanying error means
		// the tool itself failed.
		if err != nil {
			snap.LintToolFailed = true
		}
	} else {
		report := c.Lint.Classify(out)
		snap.Warnings = report.Warnings
		snap.Errors = report.Errors
		snap.LintExcerpt = report.Excerpt
	}

	return snap
}

// tailLines returns the last n non-empty lines of s.
func tailLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	if len(kept) > n {
		kept = kept[len(kept)-n:]
	}
	return strings.Join(kept, "\n")
}
