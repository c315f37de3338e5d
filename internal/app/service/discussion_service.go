// Package service provides application use cases.
package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"forum-tags-service/internal/domain"
)

// DiscussionService implements the discussion-listing API: it resolves the
// search query into repository criteria scoped to what the actor may see and
// serializes the result as an API document.
type DiscussionService struct {
	tags        domain.TagRepository
	discussions domain.DiscussionRepository
	endpoint    string
	logger      *zap.Logger
}

// NewDiscussionService creates a new DiscussionService. endpoint is the
// absolute URL of the listing API, used to build pagination links.
func NewDiscussionService(
	tags domain.TagRepository,
	discussions domain.DiscussionRepository,
	endpoint string,
	logger *zap.Logger,
) *DiscussionService {
	return &DiscussionService{
		tags:        tags,
		discussions: discussions,
		endpoint:    endpoint,
		logger:      logger,
	}
}

// List returns one page of discussions visible to the actor.
func (s *DiscussionService) List(ctx context.Context, actor *domain.Actor, params domain.ListParams) (*domain.APIDocument, error) {
	if actor == nil {
		actor = domain.Guest()
	}
	params.Normalize()

	sortKeys, err := domain.ParseSort(params.Sort)
	if err != nil {
		return nil, err
	}

	query := domain.ParseSearchQuery(params.Filter.Q)
	if len(sortKeys) == 0 && !query.IsFullText() {
		sortKeys = domain.DefaultSort
	}

	tags, err := s.tags.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading tags: %w", err)
	}
	visible := domain.TagVisibility(tags, actor)

	criteria := resolveCriteria(query, tags, visible)
	criteria.Sort = sortKeys
	criteria.Offset = params.Page.Offset
	// One extra row tells us whether a next page exists.
	criteria.Limit = params.Page.Limit + 1

	s.logger.Debug("listing discussions",
		zap.String("actor_scope", actor.Scope()),
		zap.String("sort", params.Sort),
		zap.String("q", params.Filter.Q),
		zap.Int("offset", params.Page.Offset),
		zap.Int("limit", params.Page.Limit),
	)

	discussions, err := s.discussions.Search(ctx, criteria)
	if err != nil {
		s.logger.Error("discussion search failed", zap.Error(err))
		return nil, fmt.Errorf("searching discussions: %w", err)
	}

	hasMore := len(discussions) > params.Page.Limit
	if hasMore {
		discussions = discussions[:params.Page.Limit]
	}

	doc := serializeDiscussions(discussions, visible)
	doc.Links = s.links(params, hasMore)

	s.logger.Debug("discussions listed",
		zap.Int("count", len(doc.Data)),
		zap.Bool("has_more", hasMore),
	)

	return doc, nil
}

// resolveCriteria turns tag slugs into ids. Slugs of unknown or invisible
// tags resolve to id 0, which matches nothing. Every invisible tag is
// excluded so restricted discussions never leak.
func resolveCriteria(query domain.SearchQuery, tags []*domain.Tag, visible map[int64]bool) domain.DiscussionCriteria {
	idBySlug := make(map[string]int64, len(tags))
	criteria := domain.DiscussionCriteria{
		Text:            query.Text,
		Untagged:        query.Untagged,
		Tagged:          query.Tagged,
		Authors:         query.Authors,
		ExcludedAuthors: query.ExcludedAuthors,
	}

	for _, t := range tags {
		if visible[t.ID] {
			idBySlug[domain.NormalizeSlug(t.Slug)] = t.ID
		} else {
			criteria.ExcludedTagIDs = append(criteria.ExcludedTagIDs, t.ID)
		}
	}

	for _, set := range query.TagSlugSets {
		ids := make([]int64, 0, len(set))
		for _, slug := range set {
			ids = append(ids, idBySlug[slug])
		}
		criteria.RequiredTagSets = append(criteria.RequiredTagSets, ids)
	}
	for _, slug := range query.ExcludedTagSlugs {
		if id, ok := idBySlug[slug]; ok {
			criteria.ExcludedTagIDs = append(criteria.ExcludedTagIDs, id)
		}
	}

	return criteria
}

// links builds first/prev/next links in the listing API's query notation.
func (s *DiscussionService) links(params domain.ListParams, hasMore bool) domain.DocumentLinks {
	links := domain.DocumentLinks{
		First: s.pageURL(params, 0),
	}
	if params.Page.Offset > 0 {
		links.Prev = s.pageURL(params, max(params.Page.Offset-params.Page.Limit, 0))
	}
	if hasMore {
		links.Next = s.pageURL(params, params.Page.Offset+params.Page.Limit)
	}

	return links
}

func (s *DiscussionService) pageURL(params domain.ListParams, offset int) string {
	values := url.Values{}
	if params.Sort != "" {
		values.Set("sort", params.Sort)
	}
	if params.Filter.Q != "" {
		values.Set("filter[q]", params.Filter.Q)
	}
	if offset > 0 {
		values.Set("page[offset]", strconv.Itoa(offset))
	}
	if params.Page.Limit != domain.DefaultListLimit {
		values.Set("page[limit]", strconv.Itoa(params.Page.Limit))
	}

	if len(values) == 0 {
		return s.endpoint
	}

	return s.endpoint + "?" + values.Encode()
}
