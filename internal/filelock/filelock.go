// Package filelock guards the shared resources cadence and the agent both
// touch: a run lock that keeps two drivers from interleaving sessions against
// the same tree, and atomic writes for the ledger document.
package filelock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrRunInProgress indicates another cadence driver already holds the run
// lock for this directory.
var ErrRunInProgress = errors.New("another run is already in progress")

// RunLock is an exclusive, process-level lock held for the duration of a run.
// The loop model assumes exactly one mutator is active at a time; the lock
// makes that assumption hold across processes too.
type RunLock struct {
	flock *flock.Flock
	path  string
}

// AcquireRun takes the run lock under dir without blocking. It returns
// ErrRunInProgress (wrapped) when the lock is held by another process.
func AcquireRun(dir string) (*RunLock, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create lock directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, "cadence.lock")
	fl := flock.New(path)
	acquired, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock %s: %w", path, err)
	}
	if !acquired {
		return nil, fmt.Errorf("%w (lock file %s)", ErrRunInProgress, path)
	}
	return &RunLock{flock: fl, path: path}, nil
}

// Release gives the run lock back.
func (rl *RunLock) Release() error {
	if err := rl.flock.Unlock(); err != nil {
		return fmt.Errorf("release run lock %s: %w", rl.path, err)
	}
	return nil
}

// Path returns the lock file path.
func (rl *RunLock) Path() string {
	return rl.path
}

// AtomicWrite writes data to path via a temp file and rename in the same
// directory, so readers never observe a partial write. The original file is
// untouched if any step fails.
func AtomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".cadence-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename %s to %s: %w", tmpPath, path, err)
	}
	return nil
}
