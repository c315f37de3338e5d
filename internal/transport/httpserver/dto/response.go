package dto

import (
	"forum-tags-service/internal/app/service"
	"forum-tags-service/internal/domain"
)

// TagsResponse is the JSON:API document for a tag list.
type TagsResponse struct {
	Data []domain.TagResource `json:"data"`
}

// FromTags converts tags to a TagsResponse.
func FromTags(tags []*domain.Tag) TagsResponse {
	resp := TagsResponse{Data: make([]domain.TagResource, len(tags))}
	for i, t := range tags {
		resp.Data[i] = service.SerializeTag(t)
	}

	return resp
}

// TagResponse is the JSON:API document for a single tag.
type TagResponse struct {
	Data domain.TagResource `json:"data"`
}

// FromTag converts a tag to a TagResponse.
func FromTag(t *domain.Tag) TagResponse {
	return TagResponse{Data: service.SerializeTag(t)}
}

// StatsResponse is returned after a tag stats refresh.
type StatsResponse struct {
	Tags     int    `json:"tags"`
	Duration string `json:"duration"`
}

// FromStatsResult converts service.StatsResult to StatsResponse.
func FromStatsResult(r *service.StatsResult) StatsResponse {
	return StatsResponse{
		Tags:     r.Tags,
		Duration: r.Duration.String(),
	}
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}
