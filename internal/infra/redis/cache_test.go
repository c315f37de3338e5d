package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestCache(t *testing.T, prefix string) (*Cache, *miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewCache(client, zap.NewNop(), prefix), mr, client
}

func TestCache_GetSetDelete(t *testing.T) {
	cache, mr, _ := setupTestCache(t, "tags")
	ctx := context.Background()

	got, err := cache.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, cache.Set(ctx, "doc", []byte(`{"data":[]}`), time.Minute))
	assert.True(t, mr.Exists("tags:doc"), "keys are stored under the prefix")

	got, err = cache.Get(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, `{"data":[]}`, string(got))

	mr.FastForward(2 * time.Minute)
	got, err = cache.Get(ctx, "doc")
	require.NoError(t, err)
	assert.Nil(t, got, "expired keys read as missing")

	require.NoError(t, cache.Set(ctx, "doc", []byte("x"), 0))
	require.NoError(t, cache.Delete(ctx, "doc"))
	require.NoError(t, cache.Delete(ctx, "doc"))
	assert.False(t, mr.Exists("tags:doc"))
}

func TestCache_ClearOnlyTouchesPrefix(t *testing.T) {
	cache, mr, client := setupTestCache(t, "tags")
	ctx := context.Background()

	for i := 0; i < clearBatchSize+25; i++ {
		require.NoError(t, cache.Set(ctx, fmt.Sprintf("discussions:%d", i), []byte("x"), time.Hour))
	}
	require.NoError(t, client.Set(ctx, "other:key", "keep", 0).Err())

	require.NoError(t, cache.Clear(ctx))

	keys := mr.Keys()
	assert.Equal(t, []string{"other:key"}, keys)
}

func TestCache_GetError(t *testing.T) {
	cache, mr, _ := setupTestCache(t, "tags")
	mr.SetError("LOADING")

	_, err := cache.Get(context.Background(), "doc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache get doc")
}
