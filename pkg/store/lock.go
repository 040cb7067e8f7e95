package store

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

// warnAfter is how long Lock waits before emitting the one-time "waiting
// for lock" warning.
const warnAfter = 1 * time.Second

// Lock is the store's cross-process advisory lock (the `.lock` file at the
// store root), built on gofrs/flock so it also works on Windows: try a
// non-blocking acquire first, then fall back to blocking with a
// "waiting for lock" warning.
type Lock struct {
	path string
	fl   *flock.Flock
}

// NewLock constructs a Lock for the given lock file path.
func NewLock(path string) *Lock {
	return &Lock{path: path, fl: flock.New(path)}
}

// OnWaiting is called at most once per Acquire call if the lock isn't
// granted within warnAfter; it lets callers surface a "waiting for lock"
// message without Lock depending on a logger.
type OnWaiting func()

// Acquire blocks until the lock is held or ctx is done, invoking onWaiting
// once if acquisition takes longer than one second.
func (l *Lock) Acquire(ctx context.Context, onWaiting OnWaiting) error {
	deadline := time.Now().Add(warnAfter)
	warned := false
	for {
		locked, err := l.fl.TryLock()
		if err != nil {
			return fmt.Errorf("failed to acquire store lock %s: %w", l.path, err)
		}
		if locked {
			return nil
		}
		if !warned && time.Now().After(deadline) {
			if onWaiting != nil {
				onWaiting()
			}
			warned = true
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("failed to acquire store lock %s: %w", l.path, ctx.Err())
		case <-time.After(25 * time.Millisecond):
		}
	}
}

// Release drops the lock. Safe to call even if Acquire was never called.
func (l *Lock) Release() error {
	return l.fl.Unlock()
}

// WithLock runs fn while holding the lock, releasing it unconditionally
// afterward.
func (l *Lock) WithLock(ctx context.Context, onWaiting OnWaiting, fn func() error) error {
	if err := l.Acquire(ctx, onWaiting); err != nil {
		return err
	}
	defer func() { _ = l.Release() }()
	return fn()
}
