package state

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// RunLock is an advisory lock held for the duration of a sync run.
type RunLock struct {
	lock *flock.Flock
	path string
}

// AcquireRunLock takes the lock at path without blocking. It returns [ErrLocked] when another process holds it.
func AcquireRunLock(path string) (*RunLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	return &RunLock{lock: lock, path: path}, nil
}

func (l *RunLock) Path() string { return l.path }

// Release unlocks. The lock file is left in place.
func (l *RunLock) Release() error {
	return l.lock.Unlock()
}
