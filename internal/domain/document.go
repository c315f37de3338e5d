package domain

import (
	"html/template"
	"time"
)

// Resource types used in API documents.
const (
	ResourceDiscussions = "discussions"
	ResourceTags        = "tags"
)

// APIDocument is the JSON:API shaped result of the discussion-listing API.
// It is rendered server side and also handed to the client as hydration payload.
type APIDocument struct {
	Links    DocumentLinks        `json:"links"`
	Data     []DiscussionResource `json:"data"`
	Included []TagResource        `json:"included,omitempty"`
}

// DocumentLinks holds pagination links.
type DocumentLinks struct {
	First string `json:"first"`
	Prev  string `json:"prev,omitempty"`
	Next  string `json:"next,omitempty"`
}

// ResourceIdentifier points at a resource in the document.
type ResourceIdentifier struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// ToManyRelationship is a relationship holding several identifiers.
type ToManyRelationship struct {
	Data []ResourceIdentifier `json:"data"`
}

// DiscussionResource is a discussion serialized for the listing API.
type DiscussionResource struct {
	Type          string                  `json:"type"`
	ID            string                  `json:"id"`
	Attributes    DiscussionAttributes    `json:"attributes"`
	Relationships DiscussionRelationships `json:"relationships"`
}

// DiscussionAttributes are the serialized discussion fields.
type DiscussionAttributes struct {
	Title            string     `json:"title"`
	Slug             string     `json:"slug"`
	CommentCount     int        `json:"commentCount"`
	ParticipantCount int        `json:"participantCount"`
	IsSticky         bool       `json:"isSticky"`
	AuthorName       string     `json:"authorName,omitempty"`
	Excerpt          string     `json:"excerpt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	LastPostedAt     *time.Time `json:"lastPostedAt,omitempty"`
}

// DiscussionRelationships links a discussion to included resources.
type DiscussionRelationships struct {
	Tags ToManyRelationship `json:"tags"`
}

// TagResource is a tag serialized for API documents.
type TagResource struct {
	Type       string        `json:"type"`
	ID         string        `json:"id"`
	Attributes TagAttributes `json:"attributes"`
}

// TagAttributes are the serialized tag fields.
type TagAttributes struct {
	Name            string     `json:"name"`
	Slug            string     `json:"slug"`
	Description     string     `json:"description,omitempty"`
	Color           string     `json:"color,omitempty"`
	Icon            string     `json:"icon,omitempty"`
	Position        *int       `json:"position,omitempty"`
	IsRestricted    bool       `json:"isRestricted"`
	IsHidden        bool       `json:"isHidden"`
	DiscussionCount int        `json:"discussionCount"`
	LastPostedAt    *time.Time `json:"lastPostedAt,omitempty"`
}

// IncludedTag returns the included tag with the given id, or nil.
func (d *APIDocument) IncludedTag(id string) *TagResource {
	for i := range d.Included {
		if d.Included[i].ID == id {
			return &d.Included[i]
		}
	}

	return nil
}

// HasNext reports whether the API signalled a further page.
func (d *APIDocument) HasNext() bool {
	return d != nil && d.Links.Next != ""
}

// HasPrev reports whether the API signalled a previous page.
func (d *APIDocument) HasPrev() bool {
	return d != nil && d.Links.Prev != ""
}

// Document is a server-rendered frontend page.
type Document struct {
	Title       string
	Description string

	// Content is the rendered body shown before the client boots.
	Content template.HTML

	// Payload is serialized into the page for client-side hydration.
	Payload map[string]any
}

// NewDocument creates an empty document with an initialized payload.
func NewDocument(title string) *Document {
	return &Document{
		Title:   title,
		Payload: make(map[string]any),
	}
}
