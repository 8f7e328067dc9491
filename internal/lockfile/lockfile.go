// Package lockfile wraps gofrs/flock for the advisory locks the CLI
// needs: one per configuration file, one per plugin directory, so
// concurrent CLI invocations serialize around shared on-disk state.
package lockfile

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/benjaminabbitt/hostcli/internal/errs"
)

// Lock is a held or holdable advisory file lock.
type Lock struct {
	flock *flock.Flock
}

// New returns a Lock for path. path itself is never read or written; flock
// creates it as an empty marker file if needed, and Acquire creates its
// parent directory.
func New(path string) *Lock {
	return &Lock{flock: flock.New(path)}
}

// Acquire blocks, polling every 50ms, until the lock is held or ctx is
// cancelled.
func (l *Lock) Acquire(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(l.flock.Path()), 0o755); err != nil {
		return errs.Wrap(errs.KindIO, "failed to create lock directory: "+l.flock.Path(), err)
	}
	locked, err := l.flock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		if ctx.Err() != nil {
			return errs.Wrap(errs.KindInterrupted, "interrupted while waiting for lock", err)
		}
		return errs.Wrap(errs.KindIO, "failed to acquire lock: "+l.flock.Path(), err)
	}
	if !locked {
		return errs.New(errs.KindIO, "failed to acquire lock: "+l.flock.Path())
	}
	return nil
}

// Release drops the lock. Safe to call even if Acquire failed.
func (l *Lock) Release() error {
	if !l.flock.Locked() {
		return nil
	}
	if err := l.flock.Unlock(); err != nil {
		return errs.Wrap(errs.KindIO, "failed to release lock: "+l.flock.Path(), err)
	}
	return nil
}

// WithLock acquires the lock, runs fn, then releases it regardless of
// whether fn returned an error.
func WithLock(ctx context.Context, path string, fn func() error) error {
	l := New(path)
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer l.Release()
	return fn()
}

// ConfigLockPath is the well-known lock path alongside a host user
// directory's config.json.
func ConfigLockPath(hostUserDir string) string {
	return hostUserDir + "/config.json.lock"
}

// PluginLockPath is the well-known per-plugin lock path at the plugins
// root.
func PluginLockPath(pluginsRoot, pluginName string) string {
	return pluginsRoot + "/" + pluginName + ".lock"
}
