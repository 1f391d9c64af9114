package project

import (
	"fmt"

	"github.com/gofrs/flock"
)

// Lock guards a snapshot against concurrent writers. The engine is
// single-writer: every mutating CLI invocation takes the lock for the
// duration of load-mutate-save.
type Lock struct {
	fl *flock.Flock
}

// Acquire takes an exclusive lock next to the snapshot, failing immediately
// when another process holds it.
func Acquire(snapshotPath string) (*Lock, error) {
	fl := flock.New(snapshotPath + ".lock")
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock project: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("project %s is locked by another process", snapshotPath)
	}
	return &Lock{fl: fl}, nil
}

// Release drops the lock. Safe to call once after a successful Acquire.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
