package domain

import (
	"fmt"
	"math"
	"strings"
)

// Page sizes.
const (
	// TagPageSize is the number of discussions shown per tag page.
	TagPageSize = 20

	DefaultListLimit = 20
	MaxListLimit     = 50

	// MaxTagPage is the largest tag page whose offset fits in an int.
	MaxTagPage = math.MaxInt / TagPageSize
)

// SortField is a discussion attribute the listing API can sort by.
type SortField string

const (
	SortFieldLastPostedAt SortField = "lastPostedAt"
	SortFieldCommentCount SortField = "commentCount"
	SortFieldCreatedAt    SortField = "createdAt"

	// SortFieldRelevance is implied when a full-text query is present and
	// no explicit sort was requested. It cannot be requested directly.
	SortFieldRelevance SortField = "relevance"
)

// SortKey is a single field of a sort specification.
type SortKey struct {
	Field      SortField
	Descending bool
}

// String renders the key in API notation ("-field" for descending).
func (k SortKey) String() string {
	if k.Descending {
		return "-" + string(k.Field)
	}

	return string(k.Field)
}

// DefaultSort is applied when no sort and no full-text query is given.
var DefaultSort = []SortKey{{Field: SortFieldLastPostedAt, Descending: true}}

var sortableFields = map[SortField]bool{
	SortFieldLastPostedAt: true,
	SortFieldCommentCount: true,
	SortFieldCreatedAt:    true,
}

// ParseSort parses a comma separated sort string such as "-commentCount,createdAt".
// An empty string yields no keys.
func ParseSort(sort string) ([]SortKey, error) {
	sort = strings.TrimSpace(sort)
	if sort == "" {
		return nil, nil
	}

	parts := strings.Split(sort, ",")
	keys := make([]SortKey, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		key := SortKey{}
		if strings.HasPrefix(part, "-") {
			key.Descending = true
			part = part[1:]
		}
		key.Field = SortField(part)
		if !sortableFields[key.Field] {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSort, part)
		}
		keys = append(keys, key)
	}

	return keys, nil
}

// tagSortMap translates the tag page's friendly sort names to API sort strings.
var tagSortMap = map[string]string{
	"latest": "-lastPostedAt",
	"top":    "-commentCount",
	"newest": "-createdAt",
	"oldest": "createdAt",
}

// TagSortMap returns a copy of the tag page sort translation table.
func TagSortMap() map[string]string {
	m := make(map[string]string, len(tagSortMap))
	for k, v := range tagSortMap {
		m[k] = v
	}

	return m
}

// ResolveTagSort maps a tag page sort option to its API sort string.
// Empty or unknown options map to "" so the API applies its default.
func ResolveTagSort(sort string) string {
	if sort == "" {
		return ""
	}

	return tagSortMap[sort]
}

// ListFilter holds the filter[...] parameters of the listing API.
type ListFilter struct {
	Q string `json:"q"`
}

// PageParams holds the page[...] parameters of the listing API.
type PageParams struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// ListParams is the parameter set accepted by the discussion-listing API.
type ListParams struct {
	Sort   string     `json:"sort"`
	Filter ListFilter `json:"filter"`
	Page   PageParams `json:"page"`
}

// Normalize clamps the page window into the supported range.
func (p *ListParams) Normalize() {
	if p.Page.Offset < 0 {
		p.Page.Offset = 0
	}
	if p.Page.Limit < 1 {
		p.Page.Limit = DefaultListLimit
	}
	if p.Page.Limit > MaxListLimit {
		p.Page.Limit = MaxListLimit
	}
}

// ClampTagPage returns page limited to [1, MaxTagPage].
func ClampTagPage(page int) int {
	if page < 1 {
		return 1
	}

	return min(page, MaxTagPage)
}

// TagPageParams builds the listing API parameters for page of a tag page.
// The query is always scoped to the tag with a "tag:" gambit.
func TagPageParams(slug, sort, q string, page int) ListParams {
	page = ClampTagPage(page)

	return ListParams{
		Sort:   ResolveTagSort(sort),
		Filter: ListFilter{Q: fmt.Sprintf("%s tag:%s", q, slug)},
		Page: PageParams{
			Offset: (page - 1) * TagPageSize,
			Limit:  TagPageSize,
		},
	}
}
