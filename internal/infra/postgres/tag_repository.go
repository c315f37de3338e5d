package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"forum-tags-service/internal/domain"
)

// TagRepository implements domain.TagRepository using PostgreSQL.
type TagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new PostgreSQL tag repository.
func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

// GetIDForSlug returns the id of the tag with the given slug, or 0 if none.
// Both sides are compared in their case-folded form, which Postgres lower()
// does not produce for characters such as ß.
func (r *TagRepository) GetIDForSlug(ctx context.Context, slug string) (int64, error) {
	slug = domain.NormalizeSlug(slug)
	if slug == "" {
		return 0, nil
	}

	var rows []struct {
		ID   int64
		Slug string
	}
	err := r.db.WithContext(ctx).
		Model(&TagModel{}).
		Select("id", "slug").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return 0, fmt.Errorf("looking up tag slug: %w", err)
	}

	for _, row := range rows {
		if domain.NormalizeSlug(row.Slug) == slug {
			return row.ID, nil
		}
	}

	return 0, nil
}

// FindOrFail loads the tag and checks that the actor may see it and every
// ancestor.
func (r *TagRepository) FindOrFail(ctx context.Context, id int64, actor *domain.Actor) (*domain.Tag, error) {
	if id == 0 {
		return nil, domain.ErrTagNotFound
	}

	tags, err := r.All(ctx)
	if err != nil {
		return nil, err
	}

	var tag *domain.Tag
	for _, t := range tags {
		if t.ID == id {
			tag = t
			break
		}
	}
	if tag == nil {
		return nil, domain.ErrTagNotFound
	}

	if actor == nil {
		actor = domain.Guest()
	}
	if !domain.TagVisibility(tags, actor)[id] {
		return nil, domain.ErrPermissionDenied
	}

	return tag, nil
}

// All returns every tag, primary tags first in position order.
func (r *TagRepository) All(ctx context.Context) ([]*domain.Tag, error) {
	var models []TagModel
	err := r.db.WithContext(ctx).
		Order("position ASC NULLS LAST").
		Order("name ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	tags := make([]*domain.Tag, len(models))
	for i := range models {
		tags[i] = models[i].ToDomain()
	}

	return tags, nil
}

type tagStatsRow struct {
	TagID                  int64
	DiscussionCount        int
	LastPostedAt           *time.Time
	LastPostedDiscussionID *int64
}

// ComputeStats aggregates the visible discussions of every tag that has any.
func (r *TagRepository) ComputeStats(ctx context.Context) ([]domain.TagStats, error) {
	var rows []tagStatsRow
	err := r.db.WithContext(ctx).Raw(`
		WITH visible AS (
			SELECT dt.tag_id, d.id, d.last_posted_at
			FROM discussion_tag dt
			JOIN discussions d ON d.id = dt.discussion_id
			WHERE d.is_hidden = false
		),
		counts AS (
			SELECT tag_id, COUNT(*) AS discussion_count
			FROM visible
			GROUP BY tag_id
		),
		latest AS (
			SELECT DISTINCT ON (tag_id) tag_id, id AS last_posted_discussion_id, last_posted_at
			FROM visible
			WHERE last_posted_at IS NOT NULL
			ORDER BY tag_id, last_posted_at DESC, id DESC
		)
		SELECT c.tag_id, c.discussion_count, l.last_posted_at, l.last_posted_discussion_id
		FROM counts c
		LEFT JOIN latest l ON l.tag_id = c.tag_id
		ORDER BY c.tag_id
	`).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregating tag stats: %w", err)
	}

	stats := make([]domain.TagStats, len(rows))
	for i, row := range rows {
		stats[i] = domain.TagStats(row)
	}

	return stats, nil
}

// UpdateStats resets every tag's counters and applies stats in one transaction.
func (r *TagRepository) UpdateStats(ctx context.Context, stats []domain.TagStats) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reset := tx.Model(&TagModel{}).
			Where("1 = 1").
			Updates(map[string]any{
				"discussion_count":          0,
				"last_posted_at":            nil,
				"last_posted_discussion_id": nil,
			})
		if reset.Error != nil {
			return reset.Error
		}

		for _, s := range stats {
			err := tx.Model(&TagModel{}).
				Where("id = ?", s.TagID).
				Updates(map[string]any{
					"discussion_count":          s.DiscussionCount,
					"last_posted_at":            s.LastPostedAt,
					"last_posted_discussion_id": s.LastPostedDiscussionID,
				}).Error
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("updating tag stats: %w", err)
	}

	return nil
}
