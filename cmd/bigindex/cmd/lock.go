package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// rebuildLock serializes rebuilds of one model across processes. Two
// concurrent rebuilds of the same model would interleave their batches.
type rebuildLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// newRebuildLock returns the lock for model, a file under
// <dir>/.bigindex/locks/.
func newRebuildLock(dir, model string) *rebuildLock {
	path := filepath.Join(dir, ".bigindex", "locks", model+".lock")
	return &rebuildLock{path: path, flock: flock.New(path)}
}

// TryLock acquires the lock without blocking. It returns false when
// another process holds it.
func (l *rebuildLock) TryLock() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return false, fmt.Errorf("failed to create lock directory: %w", err)
	}
	acquired, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	l.locked = acquired
	return acquired, nil
}

// Unlock releases the lock. It is safe to call on an unlocked lock.
func (l *rebuildLock) Unlock() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// Path returns the lock file path.
func (l *rebuildLock) Path() string { return l.path }
