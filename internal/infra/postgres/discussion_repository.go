package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"forum-tags-service/internal/domain"
)

// DiscussionRepository implements domain.DiscussionRepository using PostgreSQL.
type DiscussionRepository struct {
	db *gorm.DB
}

// NewDiscussionRepository creates a new PostgreSQL discussion repository.
func NewDiscussionRepository(db *gorm.DB) *DiscussionRepository {
	return &DiscussionRepository{db: db}
}

// Search returns the visible discussions matching criteria, with tags and
// author loaded.
func (r *DiscussionRepository) Search(ctx context.Context, criteria domain.DiscussionCriteria) ([]*domain.Discussion, error) {
	query := r.buildSearchQuery(criteria).WithContext(ctx)
	query = r.applyOrdering(query, criteria)

	if criteria.Offset > 0 {
		query = query.Offset(criteria.Offset)
	}
	if criteria.Limit > 0 {
		query = query.Limit(criteria.Limit)
	}

	var models []DiscussionModel
	err := query.
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("tags.position ASC NULLS LAST").Order("tags.name ASC")
		}).
		Preload("User").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("searching discussions: %w", err)
	}

	discussions := make([]*domain.Discussion, len(models))
	for i := range models {
		discussions[i] = models[i].ToDomain()
	}

	return discussions, nil
}

const tagExists = "EXISTS (SELECT 1 FROM discussion_tag dt WHERE dt.discussion_id = discussions.id"

// buildSearchQuery builds the WHERE clause for a listing.
// Text is matched with websearch_to_tsquery, so quoted phrases and -word work.
func (r *DiscussionRepository) buildSearchQuery(c domain.DiscussionCriteria) *gorm.DB {
	query := r.db.Model(&DiscussionModel{}).Where("discussions.is_hidden = ?", false)

	if c.Text != "" {
		query = query.Where(
			"discussions.search_vector @@ websearch_to_tsquery('english', ?)",
			c.Text,
		)
	}

	for _, set := range c.RequiredTagSets {
		if len(set) == 0 {
			return query.Where("1 = 0")
		}
		query = query.Where(tagExists+" AND dt.tag_id IN ?)", set)
	}

	if len(c.ExcludedTagIDs) > 0 {
		query = query.Where("NOT "+tagExists+" AND dt.tag_id IN ?)", c.ExcludedTagIDs)
	}

	if c.Untagged {
		query = query.Where("NOT " + tagExists + ")")
	}
	if c.Tagged {
		query = query.Where(tagExists + ")")
	}

	if len(c.Authors) > 0 {
		query = query.Where(
			"discussions.user_id IN (SELECT id FROM users WHERE lower(username) IN ?)",
			c.Authors,
		)
	}
	if len(c.ExcludedAuthors) > 0 {
		query = query.Where(
			"(discussions.user_id IS NULL OR discussions.user_id NOT IN (SELECT id FROM users WHERE lower(username) IN ?))",
			c.ExcludedAuthors,
		)
	}

	return query
}

var sortColumns = map[domain.SortField]string{
	domain.SortFieldLastPostedAt: "discussions.last_posted_at",
	domain.SortFieldCommentCount: "discussions.comment_count",
	domain.SortFieldCreatedAt:    "discussions.created_at",
}

// applyOrdering adds ORDER BY for the sort keys. Without keys a text query
// is ranked by relevance weighted with activity:
//
//	ts_rank(search_vector, query) × LOG(comment_count + 10)
//
// and anything else falls back to the default sort. The id is always the
// final tiebreak so pages are stable.
func (r *DiscussionRepository) applyOrdering(query *gorm.DB, c domain.DiscussionCriteria) *gorm.DB {
	keys := c.Sort
	if len(keys) == 0 {
		if c.Text != "" {
			expr := gorm.Expr(
				"ts_rank(discussions.search_vector, websearch_to_tsquery('english', ?)) * log(discussions.comment_count + 10) DESC",
				c.Text,
			)

			return query.Clauses(clause.OrderBy{Expression: expr}).Order("discussions.id DESC")
		}
		keys = domain.DefaultSort
	}

	for _, key := range keys {
		column, ok := sortColumns[key.Field]
		if !ok {
			continue
		}
		if key.Descending {
			query = query.Order(column + " DESC NULLS LAST")
		} else {
			query = query.Order(column + " ASC NULLS LAST")
		}
	}

	return query.Order("discussions.id DESC")
}
