package agent

import "context"

// ScriptedStep is one canned session returned by a ScriptedAgent.
type ScriptedStep struct {
	Text     string // transcript text
	Result   string // terminal result text
	NoResult bool   // simulate a stream that closed without a result record
	Err      error  // simulate an invocation failure
	Do       func() // side effect run before returning (e.g. mutate the ledger)
}

// ScriptedAgent is a deterministic Agent for tests: each Invoke consumes the
// next step in order. Invocations past the end of the script behave like a
// session with no result. Not safe for concurrent use; the loop is strictly
// sequential by design.
type ScriptedAgent struct {
	Steps    []ScriptedStep
	Payloads []string // payloads received, in order
}

// Invoke plays the next scripted step.
func (a *ScriptedAgent) Invoke(_ context.Context, payload string) (*Session, error) {
	a.Payloads = append(a.Payloads, payload)

	idx := len(a.Payloads) - 1
	if idx >= len(a.Steps) {
		return &Session{}, nil
	}

	step := a.Steps[idx]
	if step.Do != nil {
		step.Do()
	}
	if step.Err != nil {
		return nil, step.Err
	}
	if step.NoResult {
		return &Session{Transcript: step.Text}, nil
	}
	return &Session{Transcript: step.Text, Result: step.Result, HasResult: true}, nil
}

// Calls returns the number of invocations so far.
func (a *ScriptedAgent) Calls() int {
	return len(a.Payloads)
}
