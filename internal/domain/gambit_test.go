package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestParseSearchQuery(t *testing.T) {
	tests := []struct {
		name     string
		q        string
		expected SearchQuery
	}{
		{
			name:     "empty",
			q:        "",
			expected: SearchQuery{},
		},
		{
			name: "tag page query without text",
			q:    " tag:general",
			expected: SearchQuery{
				TagSlugSets: [][]string{{"general"}},
			},
		},
		{
			name: "text and tag",
			q:    "install error tag:Support",
			expected: SearchQuery{
				Text:        "install error",
				TagSlugSets: [][]string{{"support"}},
			},
		},
		{
			name: "any-of tags and exclusion",
			q:    "tag:dev,design -tag:archive",
			expected: SearchQuery{
				TagSlugSets:      [][]string{{"dev", "design"}},
				ExcludedTagSlugs: []string{"archive"},
			},
		},
		{
			name: "repeated tag gambits are combined",
			q:    "tag:dev tag:go",
			expected: SearchQuery{
				TagSlugSets: [][]string{{"dev"}, {"go"}},
			},
		},
		{
			name:     "untagged",
			q:        "tag:untagged",
			expected: SearchQuery{Untagged: true},
		},
		{
			name:     "negated untagged",
			q:        "-tag:untagged",
			expected: SearchQuery{Tagged: true},
		},
		{
			name: "authors",
			q:    "author:Alice -author:bob,carol hello",
			expected: SearchQuery{
				Text:            "hello",
				Authors:         []string{"alice"},
				ExcludedAuthors: []string{"bob", "carol"},
			},
		},
		{
			name: "unknown gambit stays text",
			q:    "is:sticky http://example.com",
			expected: SearchQuery{
				Text: "is:sticky http://example.com",
			},
		},
		{
			name:     "empty gambit value stays text",
			q:        "tag:",
			expected: SearchQuery{Text: "tag:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSearchQuery(tt.q)
			if diff := cmp.Diff(tt.expected, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("ParseSearchQuery(%q) mismatch (-want +got):\n%s", tt.q, diff)
			}
		})
	}
}

func TestSearchQuery_IsFullText(t *testing.T) {
	if ParseSearchQuery(" tag:general").IsFullText() {
		t.Error("expected tag-only query not to be full text")
	}
	if !ParseSearchQuery("hello tag:general").IsFullText() {
		t.Error("expected query with words to be full text")
	}
}
