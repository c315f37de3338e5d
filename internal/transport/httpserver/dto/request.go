// Package dto provides Data Transfer Objects for HTTP requests and responses.
package dto

import (
	"forum-tags-service/internal/app/service"
	"forum-tags-service/internal/domain"
)

// ListDiscussionsRequest holds the query parameters of GET /api/discussions.
// The bracketed keys are read one by one by the handler.
type ListDiscussionsRequest struct {
	Sort   string `query:"sort" validate:"omitempty,max=100,sortlist"`
	Q      string `query:"filter[q]" validate:"max=500"`
	Offset int    `query:"page[offset]" validate:"min=0"`
	Limit  int    `query:"page[limit]" validate:"min=0"`
}

// ToListParams converts the request to listing parameters. Limits are
// clamped by the listing service.
func (r *ListDiscussionsRequest) ToListParams() domain.ListParams {
	return domain.ListParams{
		Sort:   r.Sort,
		Filter: domain.ListFilter{Q: r.Q},
		Page: domain.PageParams{
			Offset: r.Offset,
			Limit:  r.Limit,
		},
	}
}

// TagPageRequest holds the inputs of GET /t/:slug. None of them are
// rejected: unknown sorts fall back to the default order and bad pages to 1.
type TagPageRequest struct {
	Slug string
	Sort string `query:"sort"`
	Q    string `query:"q"`
	Page int    `query:"page"`
}

// ToQuery converts the request to a tag page query.
func (r *TagPageRequest) ToQuery() service.TagPageQuery {
	return service.TagPageQuery{
		Slug: r.Slug,
		Sort: r.Sort,
		Q:    r.Q,
		Page: domain.ClampTagPage(r.Page),
	}
}
