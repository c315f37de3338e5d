package domain

import (
	"strings"
)

// UntaggedSlug is the reserved tag gambit value matching discussions without tags.
const UntaggedSlug = "untagged"

// SearchQuery is a listing filter split into gambits and free text.
//
// Supported gambits:
//
//	tag:a,b      discussion has tag a or tag b (repeatable, combined with AND)
//	-tag:a,b     discussion has neither tag a nor tag b
//	tag:untagged discussion has no tags (-tag:untagged: has at least one)
//	author:name  discussion was started by one of the named users
//	-author:name discussion was not started by the named users
type SearchQuery struct {
	Text string

	TagSlugSets      [][]string
	ExcludedTagSlugs []string
	Untagged         bool
	Tagged           bool

	Authors         []string
	ExcludedAuthors []string
}

// IsFullText reports whether the query carries free text to match.
func (q SearchQuery) IsFullText() bool {
	return q.Text != ""
}

// ParseSearchQuery splits q into gambits and full-text terms.
// Tokens that look like unknown gambits are kept as text.
func ParseSearchQuery(q string) SearchQuery {
	var query SearchQuery
	var text []string

	for _, token := range strings.Fields(q) {
		negated := strings.HasPrefix(token, "-")
		body := strings.TrimPrefix(token, "-")

		key, value, ok := strings.Cut(body, ":")
		if !ok || value == "" {
			text = append(text, token)
			continue
		}

		switch strings.ToLower(key) {
		case "tag":
			query.applyTagGambit(splitValues(value, NormalizeSlug), negated)
		case "author":
			names := splitValues(value, strings.ToLower)
			if negated {
				query.ExcludedAuthors = append(query.ExcludedAuthors, names...)
			} else {
				query.Authors = append(query.Authors, names...)
			}
		default:
			text = append(text, token)
		}
	}

	query.Text = strings.Join(text, " ")

	return query
}

func (q *SearchQuery) applyTagGambit(slugs []string, negated bool) {
	set := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		if slug == UntaggedSlug {
			if negated {
				q.Tagged = true
			} else {
				q.Untagged = true
			}
			continue
		}
		set = append(set, slug)
	}
	if len(set) == 0 {
		return
	}

	if negated {
		q.ExcludedTagSlugs = append(q.ExcludedTagSlugs, set...)
	} else {
		q.TagSlugSets = append(q.TagSlugSets, set)
	}
}

func splitValues(value string, normalize func(string) string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = normalize(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}

	return out
}
