package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// ExcerptLength is the number of characters of the first post kept in listings.
const ExcerptLength = 200

// Discussion is a forum thread as returned by the listing API.
type Discussion struct {
	ID               int64
	Title            string
	Slug             string
	CommentCount     int
	ParticipantCount int
	IsSticky         bool
	IsHidden         bool

	AuthorID   *int64
	AuthorName string

	// FirstPostContent is the markdown source of the opening post.
	FirstPostContent string

	CreatedAt    time.Time
	LastPostedAt *time.Time

	Tags []*Tag
}

// Excerpt returns the beginning of the first post, cut on a rune boundary.
func (d *Discussion) Excerpt() string {
	content := strings.TrimSpace(d.FirstPostContent)
	if utf8.RuneCountInString(content) <= ExcerptLength {
		return content
	}

	runes := []rune(content)

	return strings.TrimSpace(string(runes[:ExcerptLength])) + "…"
}
