package locker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// keyPrefix keeps lock keys apart from cache entries in a shared Redis.
const keyPrefix = "lock:"

// RedisLocker implements DistributedLocker with Redsync (Redlock on a single
// Redis). It remembers the mutexes it holds so Release only unlocks its own.
type RedisLocker struct {
	rs      *redsync.Redsync
	logger  *zap.Logger
	mu      sync.Mutex
	mutexes map[string]*redsync.Mutex
}

// NewRedisLocker creates a Redis-backed locker.
func NewRedisLocker(client redis.UniversalClient, logger *zap.Logger) *RedisLocker {
	return &RedisLocker{
		rs:      redsync.New(goredis.NewPool(client)),
		logger:  logger.Named("locker"),
		mutexes: make(map[string]*redsync.Mutex),
	}
}

// Acquire implements DistributedLocker. It does not retry.
func (r *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	mutex := r.rs.NewMutex(
		keyPrefix+key,
		redsync.WithExpiry(ttl),
		redsync.WithTries(1),
	)

	if err := mutex.LockContext(ctx); err != nil {
		if isTaken(err) {
			r.logger.Debug("lock already held", zap.String("key", key))
			return false, nil
		}

		return false, fmt.Errorf("acquire lock %s: %w", key, err)
	}

	r.mu.Lock()
	r.mutexes[key] = mutex
	r.mu.Unlock()

	r.logger.Debug("lock acquired", zap.String("key", key), zap.Duration("ttl", ttl))

	return true, nil
}

// Release implements DistributedLocker.
func (r *RedisLocker) Release(ctx context.Context, key string) error {
	r.mu.Lock()
	mutex, ok := r.mutexes[key]
	delete(r.mutexes, key)
	r.mu.Unlock()

	if !ok {
		return nil
	}

	released, err := mutex.UnlockContext(ctx)
	if err != nil && !isTaken(err) && !errors.Is(err, redsync.ErrLockAlreadyExpired) {
		return fmt.Errorf("release lock %s: %w", key, err)
	}

	r.logger.Debug("lock released", zap.String("key", key), zap.Bool("owned", released))

	return nil
}

// isTaken reports whether err means another holder owns the lock. Redsync
// reports contention either as ErrFailed or as a "lock already taken" error.
func isTaken(err error) bool {
	return errors.Is(err, redsync.ErrFailed) || strings.Contains(err.Error(), "lock already taken")
}
