// Package domaintest provides in-memory implementations of the domain ports
// for use in tests.
package domaintest

import (
	"context"
	"html/template"
	"sync"
	"time"

	"forum-tags-service/internal/domain"
)

// TagRepository is an in-memory domain.TagRepository.
type TagRepository struct {
	mu      sync.Mutex
	Tags    []*domain.Tag
	Stats   []domain.TagStats
	Updated []domain.TagStats
	Err     error
}

// GetIDForSlug implements domain.TagRepository.
func (r *TagRepository) GetIDForSlug(_ context.Context, slug string) (int64, error) {
	if r.Err != nil {
		return 0, r.Err
	}
	slug = domain.NormalizeSlug(slug)
	for _, t := range r.Tags {
		if domain.NormalizeSlug(t.Slug) == slug {
			return t.ID, nil
		}
	}

	return 0, nil
}

// FindOrFail implements domain.TagRepository.
func (r *TagRepository) FindOrFail(_ context.Context, id int64, actor *domain.Actor) (*domain.Tag, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	visible := domain.TagVisibility(r.Tags, actor)
	for _, t := range r.Tags {
		if t.ID != id {
			continue
		}
		if !visible[id] {
			return nil, domain.ErrPermissionDenied
		}

		return t, nil
	}

	return nil, domain.ErrTagNotFound
}

// All implements domain.TagRepository.
func (r *TagRepository) All(_ context.Context) ([]*domain.Tag, error) {
	if r.Err != nil {
		return nil, r.Err
	}

	return r.Tags, nil
}

// ComputeStats implements domain.TagRepository.
func (r *TagRepository) ComputeStats(_ context.Context) ([]domain.TagStats, error) {
	if r.Err != nil {
		return nil, r.Err
	}

	return r.Stats, nil
}

// UpdateStats implements domain.TagRepository.
func (r *TagRepository) UpdateStats(_ context.Context, stats []domain.TagStats) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Updated = append(r.Updated, stats...)

	return nil
}

// DiscussionRepository returns fixed discussions and records every criteria it receives.
type DiscussionRepository struct {
	mu          sync.Mutex
	Discussions []*domain.Discussion
	Criteria    []domain.DiscussionCriteria
	Err         error
}

// Search implements domain.DiscussionRepository. It honours Offset and Limit
// over the fixed list and ignores the other criteria.
func (r *DiscussionRepository) Search(_ context.Context, c domain.DiscussionCriteria) ([]*domain.Discussion, error) {
	r.mu.Lock()
	r.Criteria = append(r.Criteria, c)
	r.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}
	if c.Offset >= len(r.Discussions) {
		return []*domain.Discussion{}, nil
	}
	end := c.Offset + c.Limit
	if end > len(r.Discussions) {
		end = len(r.Discussions)
	}

	return r.Discussions[c.Offset:end], nil
}

// LastCriteria returns the most recent criteria passed to Search.
func (r *DiscussionRepository) LastCriteria() domain.DiscussionCriteria {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Criteria) == 0 {
		return domain.DiscussionCriteria{}
	}

	return r.Criteria[len(r.Criteria)-1]
}

// UserRepository maps tokens to actors.
type UserRepository struct {
	Users map[string]*domain.Actor
}

// FindByToken implements domain.UserRepository.
func (r *UserRepository) FindByToken(_ context.Context, token string) (*domain.Actor, error) {
	if a, ok := r.Users[token]; ok {
		return a, nil
	}

	return nil, domain.ErrUnauthorized
}

// APICall is a recorded APIClient request.
type APICall struct {
	Actor  *domain.Actor
	Params domain.ListParams
}

// APIClient returns a fixed document and records calls.
type APIClient struct {
	mu       sync.Mutex
	Document *domain.APIDocument
	Calls    []APICall
	Err      error
}

// ListDiscussions implements domain.APIClient.
func (c *APIClient) ListDiscussions(_ context.Context, actor *domain.Actor, params domain.ListParams) (*domain.APIDocument, error) {
	c.mu.Lock()
	c.Calls = append(c.Calls, APICall{Actor: actor, Params: params})
	c.mu.Unlock()

	if c.Err != nil {
		return nil, c.Err
	}

	return c.Document, nil
}

// CallCount returns the number of recorded calls.
func (c *APIClient) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.Calls)
}

// RenderCall is a recorded Renderer invocation.
type RenderCall struct {
	Name string
	Data any
}

// Renderer records views and returns Output.
type Renderer struct {
	Output template.HTML
	Calls  []RenderCall
	Err    error
}

// Make implements domain.Renderer.
func (r *Renderer) Make(name string, data any) (template.HTML, error) {
	r.Calls = append(r.Calls, RenderCall{Name: name, Data: data})
	if r.Err != nil {
		return "", r.Err
	}

	return r.Output, nil
}

// Cache is a map-backed domain.Cache that ignores TTLs.
type Cache struct {
	mu    sync.Mutex
	items map[string][]byte
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{items: make(map[string][]byte)}
}

// Get implements domain.Cache.
func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.items[key], nil
}

// Set implements domain.Cache.
func (c *Cache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value

	return nil
}

// Delete implements domain.Cache.
func (c *Cache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)

	return nil
}

// Clear implements domain.Cache.
func (c *Cache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string][]byte)

	return nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.items)
}
