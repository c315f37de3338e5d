package domain

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Tag is a forum category that discussions are filed under.
type Tag struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Icon        string `json:"icon,omitempty"`

	// Position is nil for secondary tags.
	Position *int   `json:"position,omitempty"`
	ParentID *int64 `json:"parent_id,omitempty"`

	IsRestricted  bool     `json:"is_restricted"`
	IsHidden      bool     `json:"is_hidden"`
	AllowedGroups []string `json:"allowed_groups,omitempty"`

	DiscussionCount        int        `json:"discussion_count"`
	LastPostedAt           *time.Time `json:"last_posted_at,omitempty"`
	LastPostedDiscussionID *int64     `json:"last_posted_discussion_id,omitempty"`
}

// IsPrimary reports whether the tag is a positioned top-level tag.
func (t *Tag) IsPrimary() bool {
	return t.Position != nil && t.ParentID == nil
}

// TagStats holds the denormalized counters refreshed by the stats job.
type TagStats struct {
	TagID                  int64
	DiscussionCount        int
	LastPostedAt           *time.Time
	LastPostedDiscussionID *int64
}

var slugFolder = cases.Fold()

// NormalizeSlug returns the canonical form used to compare slugs.
func NormalizeSlug(slug string) string {
	return slugFolder.String(strings.TrimSpace(slug))
}

// visibleOnItsOwn ignores the parent chain.
func (t *Tag) visibleOnItsOwn(actor *Actor) bool {
	if !t.IsRestricted {
		return true
	}

	return actor.InAnyGroup(t.AllowedGroups)
}

// TagVisibility computes which of the given tags the actor may see. A child
// tag is only visible when its parent is.
func TagVisibility(tags []*Tag, actor *Actor) map[int64]bool {
	byID := make(map[int64]*Tag, len(tags))
	for _, t := range tags {
		byID[t.ID] = t
	}

	visible := make(map[int64]bool, len(tags))
	for _, t := range tags {
		visible[t.ID] = tagVisible(t, byID, actor, 0)
	}

	return visible
}

// tagVisible walks the parent chain; depth stops cycles in bad data.
func tagVisible(t *Tag, byID map[int64]*Tag, actor *Actor, depth int) bool {
	if depth > 8 || !t.visibleOnItsOwn(actor) {
		return false
	}
	if t.ParentID == nil {
		return true
	}
	parent, ok := byID[*t.ParentID]
	if !ok {
		return true
	}

	return tagVisible(parent, byID, actor, depth+1)
}
