package locker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testLockKey = "test:lock"

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

func TestRedisLocker_Acquire(t *testing.T) {
	client, mr := setupTestRedis(t)
	locker1 := NewRedisLocker(client, zap.NewNop())
	locker2 := NewRedisLocker(client, zap.NewNop())
	ctx := context.Background()

	acquired, err := locker1.Acquire(ctx, testLockKey, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, acquired, "first acquisition should succeed")
	assert.True(t, mr.Exists("lock:"+testLockKey), "lock keys are prefixed")

	acquired, err = locker2.Acquire(ctx, testLockKey, 5*time.Second)
	require.NoError(t, err)
	assert.False(t, acquired, "second acquisition should fail while held")
}

func TestRedisLocker_ReleaseAndReacquire(t *testing.T) {
	client, _ := setupTestRedis(t)
	locker := NewRedisLocker(client, zap.NewNop())
	ctx := context.Background()

	acquired, err := locker.Acquire(ctx, testLockKey, 5*time.Second)
	require.NoError(t, err)
	require.True(t, acquired)

	require.NoError(t, locker.Release(ctx, testLockKey))

	acquired, err = locker.Acquire(ctx, testLockKey, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, acquired, "should be able to acquire after release")
}

func TestRedisLocker_ReleaseNotOwned(t *testing.T) {
	client, _ := setupTestRedis(t)
	owner := NewRedisLocker(client, zap.NewNop())
	other := NewRedisLocker(client, zap.NewNop())
	ctx := context.Background()

	acquired, err := owner.Acquire(ctx, testLockKey, 5*time.Second)
	require.NoError(t, err)
	require.True(t, acquired)

	require.NoError(t, other.Release(ctx, testLockKey))

	acquired, err = other.Acquire(ctx, testLockKey, 5*time.Second)
	require.NoError(t, err)
	assert.False(t, acquired, "release by a non-owner must not free the lock")
}

func TestRedisLocker_Expiry(t *testing.T) {
	client, mr := setupTestRedis(t)
	locker1 := NewRedisLocker(client, zap.NewNop())
	locker2 := NewRedisLocker(client, zap.NewNop())
	ctx := context.Background()

	acquired, err := locker1.Acquire(ctx, testLockKey, time.Second)
	require.NoError(t, err)
	require.True(t, acquired)

	mr.FastForward(2 * time.Second)

	acquired, err = locker2.Acquire(ctx, testLockKey, time.Second)
	require.NoError(t, err)
	assert.True(t, acquired, "expired locks can be taken")

	assert.NoError(t, locker1.Release(ctx, testLockKey), "releasing an expired lock is not an error")
}

func TestRedisLocker_ConcurrentAcquisition(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx := context.Background()

	const numInstances = 5
	results := make(chan bool, numInstances)
	for i := 0; i < numInstances; i++ {
		go func() {
			acquired, _ := NewRedisLocker(client, zap.NewNop()).Acquire(ctx, testLockKey, 2*time.Second)
			results <- acquired
		}()
	}

	successCount := 0
	for i := 0; i < numInstances; i++ {
		if <-results {
			successCount++
		}
	}

	assert.Equal(t, 1, successCount, "exactly one instance should acquire the lock")
}

func TestRedisLocker_ContextCancellation(t *testing.T) {
	client, _ := setupTestRedis(t)
	locker := NewRedisLocker(client, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	acquired, err := locker.Acquire(ctx, testLockKey, 5*time.Second)
	assert.Error(t, err)
	assert.False(t, acquired)
}

func TestWithLock(t *testing.T) {
	client, _ := setupTestRedis(t)
	locker := NewRedisLocker(client, zap.NewNop())
	other := NewRedisLocker(client, zap.NewNop())
	ctx := context.Background()

	ran := false
	err := WithLock(ctx, locker, testLockKey, 5*time.Second, func(ctx context.Context) error {
		ran = true

		// Held for the duration of fn.
		acquired, err := other.Acquire(ctx, testLockKey, time.Second)
		require.NoError(t, err)
		assert.False(t, acquired)

		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)

	acquired, err := other.Acquire(ctx, testLockKey, time.Second)
	require.NoError(t, err)
	assert.True(t, acquired, "lock is released after fn")

	err = WithLock(ctx, locker, testLockKey, time.Second, func(context.Context) error {
		t.Fatal("fn must not run without the lock")
		return nil
	})
	assert.ErrorIs(t, err, ErrNotAcquired)
}

func TestWithLock_PropagatesError(t *testing.T) {
	client, _ := setupTestRedis(t)
	locker := NewRedisLocker(client, zap.NewNop())
	boom := errors.New("boom")

	err := WithLock(context.Background(), locker, testLockKey, time.Second, func(context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)

	acquired, err := locker.Acquire(context.Background(), testLockKey, time.Second)
	require.NoError(t, err)
	assert.True(t, acquired, "lock is released when fn fails")
}
