// SPDX-License-Identifier: Apache-2.0
// Package instance keeps two launchers from writing to the external root
// at the same time.
package instance

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	gerrors "github.com/provide-io/gamegate/pkg/errors"
)

// Lock is a PID lock file.
type Lock struct {
	path   string
	pid    int
	alive  func(pid int) bool
	logger hclog.Logger

	mu   sync.Mutex
	held bool
}

// New returns an unacquired lock at path.
func New(path string, logger hclog.Logger) *Lock {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Lock{
		path:   path,
		pid:    os.Getpid(),
		alive:  processRunning,
		logger: logger.Named("instance"),
	}
}

// Path is the lock file location.
func (l *Lock) Path() string {
	return l.path
}

// Held reports whether this process owns the lock.
func (l *Lock) Held() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held
}

// TryAcquire takes the lock if it is free or stale. It returns
// ErrInstanceLocked when a live process holds it.
func (l *Lock) TryAcquire() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o700); err != nil {
		return fmt.Errorf("creating lock directory: %w", err)
	}
	if err := l.clearStale(); err != nil {
		return err
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", gerrors.ErrInstanceLocked, l.path)
		}
		return err
	}
	_, werr := fmt.Fprintf(f, "%d\n", l.pid)
	cerr := f.Close()
	if werr != nil || cerr != nil {
		os.Remove(l.path)
		return errors.Join(werr, cerr)
	}

	l.held = true
	l.logger.Debug("🔒 Acquired instance lock", "path", l.path, "pid", l.pid)
	return nil
}

// clearStale removes a lock left behind by a dead process or one that
// cannot be parsed.
func (l *Lock) clearStale() error {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err == nil {
		pid, perr := strconv.Atoi(strings.TrimSpace(string(data)))
		switch {
		case perr != nil:
			l.logger.Info("🧹 Removing invalid lock file", "path", l.path)
		case pid == l.pid:
			l.logger.Debug("Lock file carries our own PID, reclaiming", "pid", pid)
		case l.alive(pid):
			l.logger.Debug("🔒 Lock held by active process", "pid", pid)
			return fmt.Errorf("%w: held by pid %d", gerrors.ErrInstanceLocked, pid)
		default:
			l.logger.Info("🧹 Removing stale lock from dead process", "pid", pid)
		}
	} else {
		l.logger.Info("🧹 Removing unreadable lock file", "path", l.path, "error", err)
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing stale lock: %w", err)
	}
	return nil
}

// Release removes the lock file if this process holds it.
func (l *Lock) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.held {
		return
	}
	if err := os.Remove(l.path); err != nil {
		l.logger.Debug("⚠️ Failed to remove lock file", "error", err)
	} else {
		l.logger.Debug("🔓 Released instance lock")
	}
	l.held = false
}
