package config

import (
	"errors"
	"fmt"

	"github.com/danjacques/gofslock/fslock"
)

// Unlocker releases a held lock
type Unlocker interface {
	Unlock() error
}

// Locker guards a config file against concurrent read-modify-write cycles
type Locker interface {
	Lock(path string) (Unlocker, error)
}

// LockSuffix is appended to a config path to name its lock file
const LockSuffix = ".lock"

// FileLocker takes an advisory lock on <path>.lock. The file stays behind
// after unlocking.
type FileLocker struct{}

// Lock acquires the lock or fails immediately if another process holds it
func (FileLocker) Lock(path string) (Unlocker, error) {
	handle, err := fslock.Lock(path + LockSuffix)
	if err != nil {
		if errors.Is(err, fslock.ErrLockHeld) {
			return nil, fmt.Errorf("%s is being modified by another godot-rust-helper process", path)
		}
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	return handle, nil
}

// NopLocker never blocks; used with in-memory filesystems
type NopLocker struct{}

func (NopLocker) Lock(string) (Unlocker, error) {
	return nopUnlocker{}, nil
}

type nopUnlocker struct{}

func (nopUnlocker) Unlock() error { return nil }
