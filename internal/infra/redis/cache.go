// Package redis provides the Redis client and the document cache.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// clearBatchSize is the number of keys scanned and unlinked per round trip.
const clearBatchSize = 500

// Config holds Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", cfg.Addr, err)
	}

	return client, nil
}

// Cache implements domain.Cache on Redis. Every key lives under keyPrefix
// so Clear only touches this service's entries.
type Cache struct {
	client    redis.UniversalClient
	logger    *zap.Logger
	keyPrefix string
}

// NewCache creates a new Redis cache instance.
func NewCache(client redis.UniversalClient, logger *zap.Logger, keyPrefix string) *Cache {
	return &Cache{
		client:    client,
		logger:    logger.Named("cache"),
		keyPrefix: keyPrefix,
	}
}

// Get returns nil, nil for a missing key.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, c.buildKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("cache miss", zap.String("key", key))
		return nil, nil
	}
	if err != nil {
		c.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}

	c.logger.Debug("cache hit", zap.String("key", key), zap.Int("bytes", len(data)))

	return data, nil
}

// Set stores value for ttl. A zero ttl keeps the key until it is deleted.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.buildKey(key), value, ttl).Err(); err != nil {
		c.logger.Warn("cache set failed",
			zap.String("key", key),
			zap.Int("bytes", len(value)),
			zap.Error(err),
		)

		return fmt.Errorf("cache set %s: %w", key, err)
	}

	return nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.buildKey(key)).Err(); err != nil {
		return fmt.Errorf("cache delete %s: %w", key, err)
	}

	return nil
}

// Clear unlinks every key under the prefix, one SCAN page at a time.
func (c *Cache) Clear(ctx context.Context) error {
	pattern := c.keyPrefix + ":*"
	iter := c.client.Scan(ctx, 0, pattern, clearBatchSize).Iterator()

	removed := 0
	batch := make([]string, 0, clearBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := c.client.Unlink(ctx, batch...).Err(); err != nil {
			return err
		}
		removed += len(batch)
		batch = batch[:0]

		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == clearBatchSize {
			if err := flush(); err != nil {
				return fmt.Errorf("cache clear: %w", err)
			}
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache clear scan: %w", err)
	}
	if err := flush(); err != nil {
		return fmt.Errorf("cache clear: %w", err)
	}

	c.logger.Info("cache cleared", zap.String("pattern", pattern), zap.Int("keys", removed))

	return nil
}

func (c *Cache) buildKey(key string) string {
	return c.keyPrefix + ":" + key
}
