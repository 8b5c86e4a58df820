package agent

import (
	"context"
	"fmt"
	"io"
	"os/exec"
)

// ClaudeAgent invokes the Claude Code CLI as a subprocess, one process per
// session. The payload is the sole instruction; output is consumed as a
// stream-json record stream until the process's stdout closes.
type ClaudeAgent struct {
	// Binary is the path to the CLI binary. Defaults to "claude".
	Binary string

	// ExtraArgs are appended after the standard invocation flags.
	ExtraArgs []string

	// WorkDir is the working directory for the session (the governed tree).
	WorkDir string

	// TextSink receives incremental text live as the agent streams it. May
	// be nil for silent operation.
	TextSink io.Writer
}

// Invoke spawns one agent process with the payload and blocks until its
// output stream closes. Spawn and stream I/O failures wrap ErrInvocation.
// A session whose stream closes without a result record returns a Session
// with HasResult=false and a nil error.
func (a *ClaudeAgent) Invoke(ctx context.Context, payload string) (*Session, error) {
	binary := a.Binary
	if binary == "" {
		binary = "claude"
	}

	args := []string{
		"-p", payload,
		"--output-format", "stream-json",
		"--verbose",
		"--dangerously-skip-permissions",
	}
	args = append(args, a.ExtraArgs...)

	cmd := exec.CommandContext(ctx, binary, args...)
	if a.WorkDir != "" {
		cmd.Dir = a.WorkDir
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdout pipe: %v", ErrInvocation, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start %s: %v", ErrInvocation, binary, err)
	}

	session, decodeErr := decodeStream(stdout, a.TextSink)
	waitErr := cmd.Wait()

	if decodeErr != nil {
		return nil, decodeErr
	}
	if waitErr != nil && !session.HasResult && session.Transcript == "" {
		// The CLI is known to exit non-zero even after useful sessions, so
		// exit status only matters when the stream carried nothing at all.
		return nil, fmt.Errorf("%w: %s exited: %v", ErrInvocation, binary, waitErr)
	}

	return session, nil
}
