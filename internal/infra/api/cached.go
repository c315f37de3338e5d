package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"forum-tags-service/internal/domain"
)

// CacheKeyPrefix namespaces listing documents inside the cache.
const CacheKeyPrefix = "discussions"

// CachedClient decorates an APIClient with a shared document cache.
//
// Documents are keyed by the actor's permission scope, so two users in the
// same groups share entries. Concurrent misses for one key are collapsed into
// a single upstream request. Cache failures never fail a request.
type CachedClient struct {
	next   domain.APIClient
	cache  domain.Cache
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger
}

// NewCachedClient wraps next with cache.
func NewCachedClient(next domain.APIClient, cache domain.Cache, ttl time.Duration, logger *zap.Logger) *CachedClient {
	return &CachedClient{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// ListDiscussions implements domain.APIClient.
func (c *CachedClient) ListDiscussions(ctx context.Context, actor *domain.Actor, params domain.ListParams) (*domain.APIDocument, error) {
	key, err := CacheKey(actor, params)
	if err != nil {
		return c.next.ListDiscussions(ctx, actor, params)
	}

	if doc := c.lookup(ctx, key); doc != nil {
		return doc, nil
	}

	// The shared upstream call outlives any single waiter; each waiter still
	// stops on its own context.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		doc, err := c.next.ListDiscussions(shared, actor, params)
		if err != nil {
			return nil, err
		}
		c.store(shared, key, doc)

		return doc, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.logger.Debug("listing request shared", zap.String("key", key))
		}

		return res.Val.(*domain.APIDocument), nil
	}
}

func (c *CachedClient) lookup(ctx context.Context, key string) *domain.APIDocument {
	data, err := c.cache.Get(ctx, key)
	if err != nil || data == nil {
		return nil
	}

	var doc domain.APIDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		c.logger.Warn("discarding unreadable cached document", zap.String("key", key), zap.Error(err))
		_ = c.cache.Delete(ctx, key)

		return nil
	}

	return &doc
}

func (c *CachedClient) store(ctx context.Context, key string, doc *domain.APIDocument) {
	data, err := json.Marshal(doc)
	if err != nil {
		c.logger.Warn("encoding document for cache", zap.Error(err))
		return
	}
	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("caching document", zap.String("key", key), zap.Error(err))
	}
}

// CacheKey derives the cache key for a listing request.
func CacheKey(actor *domain.Actor, params domain.ListParams) (string, error) {
	encoded, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("encoding list params: %w", err)
	}
	sum := sha256.Sum256(encoded)

	return CacheKeyPrefix + ":" + actor.Scope() + ":" + hex.EncodeToString(sum[:12]), nil
}
