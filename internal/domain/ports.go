package domain

import (
	"context"
	"html/template"
	"time"
)

// TagRepository defines tag persistence and lookup.
// Implementations: internal/infra/postgres/tag_repository.go
type TagRepository interface {
	// GetIDForSlug returns the id of the tag with the given slug, or 0 if none.
	GetIDForSlug(ctx context.Context, slug string) (int64, error)

	// FindOrFail returns the tag if it exists and the actor may see it.
	// Fails with ErrTagNotFound or ErrPermissionDenied.
	FindOrFail(ctx context.Context, id int64, actor *Actor) (*Tag, error)

	// All returns every tag ordered by position, then name.
	All(ctx context.Context) ([]*Tag, error)

	// ComputeStats aggregates discussion counters per tag from discussions.
	ComputeStats(ctx context.Context) ([]TagStats, error)

	// UpdateStats stores the counters; tags missing from stats are reset.
	UpdateStats(ctx context.Context, stats []TagStats) error
}

// DiscussionCriteria is a resolved listing query handed to the repository.
// Tag gambits have already been translated to ids.
type DiscussionCriteria struct {
	Text string

	// RequiredTagSets: the discussion must carry one tag of every set.
	RequiredTagSets [][]int64
	ExcludedTagIDs  []int64
	Untagged        bool
	Tagged          bool

	Authors         []string
	ExcludedAuthors []string

	// Sort is empty when ordering by relevance.
	Sort   []SortKey
	Offset int
	Limit  int
}

// DiscussionRepository defines discussion queries.
// Implementations: internal/infra/postgres/discussion_repository.go
type DiscussionRepository interface {
	Search(ctx context.Context, criteria DiscussionCriteria) ([]*Discussion, error)
}

// UserRepository resolves actors from access tokens.
// Implementations: internal/infra/postgres/user_repository.go
type UserRepository interface {
	// FindByToken returns ErrUnauthorized when no user owns the token.
	FindByToken(ctx context.Context, token string) (*Actor, error)
}

// APIClient sends requests to the discussion-listing API on behalf of an actor.
// Implementations: internal/infra/api/
type APIClient interface {
	ListDiscussions(ctx context.Context, actor *Actor, params ListParams) (*APIDocument, error)
}

// Renderer turns a named view and its data into markup.
// Implementations: internal/render/
type Renderer interface {
	Make(name string, data any) (template.HTML, error)
}

// Cache defines the interface for caching operations.
// Implementations: internal/infra/redis/cache.go
type Cache interface {
	// Get retrieves a value by key. Returns nil if not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error

	// Clear removes all cached values.
	Clear(ctx context.Context) error
}
