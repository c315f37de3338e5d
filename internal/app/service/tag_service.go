package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"forum-tags-service/internal/domain"
)

// TagService handles tag listing and counter maintenance.
type TagService struct {
	tags   domain.TagRepository
	cache  domain.Cache
	logger *zap.Logger
}

// NewTagService creates a new TagService. cache may be nil; when set it is
// cleared after counters change so cached listings pick up new tag data.
func NewTagService(tags domain.TagRepository, cache domain.Cache, logger *zap.Logger) *TagService {
	return &TagService{
		tags:   tags,
		cache:  cache,
		logger: logger,
	}
}

// List returns the tags visible to the actor.
func (s *TagService) List(ctx context.Context, actor *domain.Actor) ([]*domain.Tag, error) {
	tags, err := s.tags.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading tags: %w", err)
	}

	visible := domain.TagVisibility(tags, actor)
	out := make([]*domain.Tag, 0, len(tags))
	for _, t := range tags {
		if visible[t.ID] {
			out = append(out, t)
		}
	}

	return out, nil
}

// Get returns the tag with the given slug if the actor may see it.
func (s *TagService) Get(ctx context.Context, actor *domain.Actor, slug string) (*domain.Tag, error) {
	id, err := s.tags.GetIDForSlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("resolving tag slug: %w", err)
	}

	return s.tags.FindOrFail(ctx, id, actor)
}

// StatsResult holds the outcome of a counter refresh.
type StatsResult struct {
	Tags     int
	Duration time.Duration
}

// RefreshStats recomputes discussion counters for every tag.
func (s *TagService) RefreshStats(ctx context.Context) (*StatsResult, error) {
	start := time.Now()

	stats, err := s.tags.ComputeStats(ctx)
	if err != nil {
		s.logger.Error("computing tag stats failed", zap.Error(err))
		return nil, fmt.Errorf("computing tag stats: %w", err)
	}

	if err := s.tags.UpdateStats(ctx, stats); err != nil {
		s.logger.Error("updating tag stats failed", zap.Error(err))
		return nil, fmt.Errorf("updating tag stats: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Clear(ctx); err != nil {
			// Stale listings expire on their own.
			s.logger.Warn("clearing document cache failed", zap.Error(err))
		}
	}

	result := &StatsResult{
		Tags:     len(stats),
		Duration: time.Since(start),
	}

	s.logger.Info("tag stats refreshed",
		zap.Int("tags", result.Tags),
		zap.Duration("duration", result.Duration),
	)

	return result, nil
}
