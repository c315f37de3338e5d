package service

import (
	"strconv"

	"forum-tags-service/internal/domain"
)

// SerializeTag converts a tag into its API resource.
func SerializeTag(t *domain.Tag) domain.TagResource {
	return domain.TagResource{
		Type: domain.ResourceTags,
		ID:   strconv.FormatInt(t.ID, 10),
		Attributes: domain.TagAttributes{
			Name:            t.Name,
			Slug:            t.Slug,
			Description:     t.Description,
			Color:           t.Color,
			Icon:            t.Icon,
			Position:        t.Position,
			IsRestricted:    t.IsRestricted,
			IsHidden:        t.IsHidden,
			DiscussionCount: t.DiscussionCount,
			LastPostedAt:    t.LastPostedAt,
		},
	}
}

// serializeDiscussions builds an API document with the discussions as
// primary data and their visible tags as included resources.
func serializeDiscussions(discussions []*domain.Discussion, visible map[int64]bool) *domain.APIDocument {
	doc := &domain.APIDocument{
		Data: make([]domain.DiscussionResource, 0, len(discussions)),
	}
	included := make(map[int64]bool)

	for _, d := range discussions {
		resource := domain.DiscussionResource{
			Type: domain.ResourceDiscussions,
			ID:   strconv.FormatInt(d.ID, 10),
			Attributes: domain.DiscussionAttributes{
				Title:            d.Title,
				Slug:             d.Slug,
				CommentCount:     d.CommentCount,
				ParticipantCount: d.ParticipantCount,
				IsSticky:         d.IsSticky,
				AuthorName:       d.AuthorName,
				Excerpt:          d.Excerpt(),
				CreatedAt:        d.CreatedAt,
				LastPostedAt:     d.LastPostedAt,
			},
			Relationships: domain.DiscussionRelationships{
				Tags: domain.ToManyRelationship{Data: []domain.ResourceIdentifier{}},
			},
		}

		for _, t := range d.Tags {
			if !visible[t.ID] {
				continue
			}
			resource.Relationships.Tags.Data = append(resource.Relationships.Tags.Data, domain.ResourceIdentifier{
				Type: domain.ResourceTags,
				ID:   strconv.FormatInt(t.ID, 10),
			})
			if !included[t.ID] {
				included[t.ID] = true
				doc.Included = append(doc.Included, SerializeTag(t))
			}
		}

		doc.Data = append(doc.Data, resource)
	}

	return doc
}
