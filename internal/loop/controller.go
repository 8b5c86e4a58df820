// Package loop sequences the cadence iteration cycle: re-read the ledger,
// collect validation feedback, compose the payload, invoke the agent, inspect
// the terminal result, decide continue or stop. Execution is strictly
// sequential; at most one of those activities is ever in flight.
package loop

import (
	"context"
	"fmt"
	"strings"

	"github.com/harrison/cadence/internal/agent"
	"github.com/harrison/cadence/internal/ledger"
	"github.com/harrison/cadence/internal/prompt"
	"github.com/harrison/cadence/internal/validation"
)

// StopReason says why the loop halted.
type StopReason int

const (
	// StopSentinel: the agent's terminal result contained the completion
	// sentinel. Short-circuits regardless of actual ledger state.
	StopSentinel StopReason = iota
	// StopLedgerExhausted: no pending entries remained at CheckRemaining,
	// before spending an iteration.
	StopLedgerExhausted
	// StopBudget: the iteration budget was spent. Normal termination, not an
	// error.
	StopBudget
)

// String returns the user-facing description of the stop reason.
func (r StopReason) String() string {
	switch r {
	case StopSentinel:
		return "sentinel reached"
	case StopLedgerExhausted:
		return "ledger exhausted"
	case StopBudget:
		return "budget exhausted"
	default:
		return "unknown"
	}
}

// Result summarizes a completed run.
type Result struct {
	Iterations int
	Reason     StopReason
}

// Logger receives per-iteration progress lines and the final stop line.
type Logger interface {
	LogInfo(message string)
	LogWarn(message string)
}

// Journal optionally records each iteration for later inspection. Journal
// failures are logged and otherwise ignored; the loop never reads the
// journal back.
type Journal interface {
	RecordIteration(iteration int, snap validation.Snapshot, hasResult bool) error
}

// Controller is the top-level state machine. The ledger and the tree it
// governs are owned by the environment: the controller re-reads the ledger
// fresh at the top of every iteration and never caches it across an agent
// session, since the agent mutates both during its session.
type Controller struct {
	Budget     int
	Mode       prompt.Mode
	LedgerPath string
	Parser     *ledger.Parser
	Collector  *validation.Collector
	Agent      agent.Agent
	Policy     string
	DocRefs    []string
	Sentinel   string
	Log        Logger
	Journal    Journal // may be nil
}

// Run drives the loop to termination. It performs at most Budget agent
// invocations, stopping earlier only when the ledger is exhausted or the
// sentinel is observed. A malformed ledger or a failed agent invocation is
// fatal and returned as an error; a session without a result record counts
// against the budget and continues.
//
// Single-task-per-iteration is an instruction-level contract carried in the
// payload, not enforced here: the controller cannot verify how much of the
// ledger or tree the agent touched in one session.
func (c *Controller) Run(ctx context.Context) (*Result, error) {
	if c.Budget < 1 {
		return nil, fmt.Errorf("iteration budget must be at least 1, got %d", c.Budget)
	}

	sentinel := c.Sentinel
	if sentinel == "" {
		sentinel = prompt.DefaultSentinel
	}

	iterations := 0
	for {
		led, err := ledger.Load(c.LedgerPath, c.Parser)
		if err != nil {
			return nil, err
		}

		completed, remaining := led.Counts()
		if remaining == 0 {
			c.Log.LogInfo(fmt.Sprintf("stopped: %s (%d tasks complete, %d iterations)",
				StopLedgerExhausted, completed, iterations))
			return &Result{Iterations: iterations, Reason: StopLedgerExhausted}, nil
		}

		var task *prompt.Task
		if c.Mode == prompt.ModeImplement {
			pos, _ := led.FindFirstPending()
			entry := led.EntryAt(pos)
			task = &prompt.Task{
				Section:     led.SectionTitle(pos),
				Description: entry.Description,
				Category:    entry.Tag,
				Source:      entry.Source,
				Notes:       entry.Notes,
			}
		}

		snap := c.Collector.Run(ctx)

		payload := prompt.Compose(prompt.Inputs{
			Policy:   c.Policy,
			DocRefs:  c.DocRefs,
			Mode:     c.Mode,
			Task:     task,
			Snapshot: snap,
			Sentinel: sentinel,
		})

		session, err := c.Agent.Invoke(ctx, payload)
		if err != nil {
			return nil, err
		}
		iterations++

		c.Log.LogInfo(fmt.Sprintf("iteration %d: %d done, %d remaining; tests %d passed, %d failed",
			iterations, completed, remaining, snap.Passed, snap.Failed))

		if c.Journal != nil {
			if jerr := c.Journal.RecordIteration(iterations, snap, session.HasResult); jerr != nil {
				c.Log.LogWarn(fmt.Sprintf("history: %v", jerr))
			}
		}

		if session.HasResult && strings.Contains(session.Result, sentinel) {
			c.Log.LogInfo(fmt.Sprintf("stopped: %s (%d iterations)", StopSentinel, iterations))
			return &Result{Iterations: iterations, Reason: StopSentinel}, nil
		}
		if !session.HasResult {
			c.Log.LogWarn(fmt.Sprintf("iteration %d: session ended without a result record", iterations))
		}

		if iterations >= c.Budget {
			c.Log.LogInfo(fmt.Sprintf("stopped: %s (%d iterations)", StopBudget, iterations))
			return &Result{Iterations: iterations, Reason: StopBudget}, nil
		}
	}
}
