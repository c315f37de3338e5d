package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"forum-tags-service/internal/domain"
	"forum-tags-service/internal/domain/domaintest"
)

func TestTagService_List(t *testing.T) {
	svc := NewTagService(&domaintest.TagRepository{Tags: forumTags()}, nil, zap.NewNop())

	guestTags, err := svc.List(context.Background(), domain.Guest())
	require.NoError(t, err)
	assert.Len(t, guestTags, 2)

	adminTags, err := svc.List(context.Background(), &domain.Actor{ID: 1, IsAdmin: true})
	require.NoError(t, err)
	assert.Len(t, adminTags, 3)
}

func TestTagService_Get(t *testing.T) {
	svc := NewTagService(&domaintest.TagRepository{Tags: forumTags()}, nil, zap.NewNop())

	tag, err := svc.Get(context.Background(), domain.Guest(), "Support")
	require.NoError(t, err)
	assert.Equal(t, int64(3), tag.ID)

	_, err = svc.Get(context.Background(), domain.Guest(), "staff")
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	_, err = svc.Get(context.Background(), domain.Guest(), "nope")
	assert.ErrorIs(t, err, domain.ErrTagNotFound)
}

func TestTagService_RefreshStats(t *testing.T) {
	now := time.Now().UTC()
	discussionID := int64(42)
	repo := &domaintest.TagRepository{
		Tags: forumTags(),
		Stats: []domain.TagStats{
			{TagID: 1, DiscussionCount: 12, LastPostedAt: &now, LastPostedDiscussionID: &discussionID},
			{TagID: 3, DiscussionCount: 4},
		},
	}
	cache := domaintest.NewCache()
	require.NoError(t, cache.Set(context.Background(), "discussions:abc", []byte("{}"), time.Minute))

	svc := NewTagService(repo, cache, zap.NewNop())
	result, err := svc.RefreshStats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, result.Tags)
	assert.Equal(t, repo.Stats, repo.Updated)
	assert.Zero(t, cache.Len(), "document cache should be cleared")
}

func TestTagService_RefreshStats_Error(t *testing.T) {
	repo := &domaintest.TagRepository{Err: errors.New("db down")}
	svc := NewTagService(repo, nil, zap.NewNop())

	result, err := svc.RefreshStats(context.Background())

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "computing tag stats")
}
