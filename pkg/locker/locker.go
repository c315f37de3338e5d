// Package locker provides distributed locks for coordinating work across
// service instances.
package locker

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotAcquired is returned by WithLock when another holder owns the lock.
var ErrNotAcquired = errors.New("lock held by another instance")

// DistributedLocker provides distributed lock capabilities across multiple instances.
// Implementations must be safe for concurrent use.
type DistributedLocker interface {
	// Acquire tries once to take the lock. It returns false, nil when another
	// holder owns it. The lock expires after ttl unless released.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release releases a lock taken by this instance. Releasing a lock this
	// instance does not own is a no-op.
	Release(ctx context.Context, key string) error
}

// WithLock runs fn while holding key. The lock is always released when fn
// returns; ttl only bounds how long a crashed holder can block others.
func WithLock(ctx context.Context, l DistributedLocker, key string, ttl time.Duration, fn func(context.Context) error) error {
	acquired, err := l.Acquire(ctx, key, ttl)
	if err != nil {
		return err
	}
	if !acquired {
		return fmt.Errorf("%s: %w", key, ErrNotAcquired)
	}

	defer func() {
		// The caller's context may be done by now.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = l.Release(releaseCtx, key)
	}()

	return fn(ctx)
}
