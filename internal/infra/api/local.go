package api

import (
	"context"

	"forum-tags-service/internal/domain"
)

// DiscussionLister is the in-process listing API.
type DiscussionLister interface {
	List(ctx context.Context, actor *domain.Actor, params domain.ListParams) (*domain.APIDocument, error)
}

// LocalClient implements domain.APIClient by calling the listing service
// directly, skipping HTTP.
type LocalClient struct {
	lister DiscussionLister
}

// NewLocalClient creates a client backed by lister.
func NewLocalClient(lister DiscussionLister) *LocalClient {
	return &LocalClient{lister: lister}
}

// ListDiscussions implements domain.APIClient.
func (c *LocalClient) ListDiscussions(ctx context.Context, actor *domain.Actor, params domain.ListParams) (*domain.APIDocument, error) {
	return c.lister.List(ctx, actor, params)
}
