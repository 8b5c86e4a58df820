// Package agent drives one external coding-agent session per loop iteration.
// The agent is opaque and effectively nondeterministic: it receives a single
// instruction payload and emits a line-delimited stream of structured
// records. The package exposes the capability as an interface with a
// subprocess-backed implementation and a deterministic scripted fake.
package agent

import (
	"context"
	"errors"
)

// ErrInvocation indicates the agent process could not be spawned or its
// stream could not be read. Fatal to the run; never silently retried.
var ErrInvocation = errors.New("agent invocation failed")

// Session is the outcome of one agent invocation. Transcript is the
// newline-normalized concatenation of every incremental-text record.
// HasResult is false when the stream closed without a terminal result record
// ("no progress this iteration", not a hard failure).
type Session struct {
	Transcript string
	Result     string
	HasResult  bool
}

// Agent runs one session per Invoke call. The call is fully synchronous: it
// returns only after the agent's output stream has closed.
type Agent interface {
	Invoke(ctx context.Context, payload string) (*Session, error)
}
