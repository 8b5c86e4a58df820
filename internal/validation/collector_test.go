package validation

import (
	"context"
	"errors"
	"testing"
)

// FakeCommandRunner returns canned output per command and records the
// commands it ran.
type FakeCommandRunner struct {
	outputs  map[string]string
	errs     map[string]error
	commands []string
}

func NewFakeCommandRunner() *FakeCommandRunner {
	return &FakeCommandRunner{
		outputs: make(map[string]string),
		errs:    make(map[string]error),
	}
}

func (r *FakeCommandRunner) SetOutput(command, output string) {
	r.outputs[command] = output
}

func (r *FakeCommandRunner) SetError(command string, err error) {
	r.errs[command] = err
}

func (r *FakeCommandRunner) Run(_ context.Context, command string) (string, error) {
	r.commands = append(r.commands, command)
	return r.outputs[command], r.errs[command]
}

func newTestCollector(runner CommandRunner) *Collector {
	return &Collector{
		Runner:      runner,
		TestCommand: "cargo test --workspace",
		LintCommand: "cargo clippy --workspace",
		Tests:       NewCargoTestClassifier(),
		Lint:        NewCargoLintClassifier(),
	}
}

func TestCollectorRunHealthy(t *testing.T) {
	runner := NewFakeCommandRunner()
	runner.SetOutput("cargo test --workspace", cargoTestOutput)
	runner.SetOutput("cargo clippy --workspace", "warning: unused import\n")

	snap := newTestCollector(runner).Run(context.Background())

	if snap.Passed != 2 || snap.Failed != 1 {
		t.Errorf("expected 2 passed / 1 failed, got %d / %d", snap.Passed, snap.Failed)
	}
	if snap.Warnings != 1 || snap.Errors != 0 {
		t.Errorf("expected 1 warning / 0 errors, got %d / %d", snap.Warnings, snap.Errors)
	}
	if snap.ToolFailed() {
		t.Error("snapshot should not be marked tool-failed")
	}

	if len(runner.commands) != 2 || runner.commands[0] != "cargo test --workspace" {
		t.Errorf("expected test command to run first, got %v", runner.commands)
	}
}

func TestCollectorToolFailureIsNotAnError(t *testing.T) {
	// The test command exits non-zero with empty output: the snapshot carries
	// the annotation instead of the collector failing.
	runner := NewFakeCommandRunner()
	runner.SetOutput("cargo test --workspace", "")
	runner.SetError("cargo test --workspace", errors.New("exit status 127"))
	runner.SetOutput("cargo clippy --workspace", "")

	snap := newTestCollector(runner).Run(context.Background())

	if snap.Passed != 0 || snap.Failed != 0 {
		t.Errorf("expected zero counts, got %d / %d", snap.Passed, snap.Failed)
	}
	if !snap.TestToolFailed {
		t.Error("expected TestToolFailed annotation")
	}
	if snap.LintToolFailed {
		t.Error("empty lint output without an error is clean, not a tool failure")
	}
}

func TestCollectorCompileErrorSurfacesDetail(t *testing.T) {
	// Non-zero exit with output but no classifiable checks (e.g. the tests
	// failed to compile): annotate as tool failure and surface the tail.
	runner := NewFakeCommandRunner()
	runner.SetOutput("cargo test --workspace", "error[E0308]: mismatched types\n  --> src/lib.rs:10:5\n")
	runner.SetError("cargo test --workspace", errors.New("exit status 101"))
	runner.SetOutput("cargo clippy --workspace", "")

	snap := newTestCollector(runner).Run(context.Background())

	if !snap.TestToolFailed {
		t.Error("expected TestToolFailed annotation")
	}
	if snap.FailureDetail == "" {
		t.Error("expected the compile error to be surfaced in FailureDetail")
	}
}

func TestCollectorLintToolFailure(t *testing.T) {
	runner := NewFakeCommandRunner()
	runner.SetOutput("cargo test --workspace", cargoTestOutput)
	runner.SetOutput("cargo clippy --workspace", "")
	runner.SetError("cargo clippy --workspace", errors.New("exit status 127"))

	snap := newTestCollector(runner).Run(context.Background())
	if !snap.LintToolFailed {
		t.Error("expected LintToolFailed annotation")
	}
	if snap.TestToolFailed {
		t.Error("test side should be unaffected")
	}
}
