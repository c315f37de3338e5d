package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"forum-tags-service/internal/domain"
	"forum-tags-service/internal/domain/domaintest"
)

func newTagPageFixture() (*domaintest.TagRepository, *domaintest.APIClient, *domaintest.Renderer) {
	tags := &domaintest.TagRepository{
		Tags: []*domain.Tag{
			{ID: 1, Name: "General", Slug: "general", Description: "Anything goes"},
			{ID: 2, Name: "Staff", Slug: "staff", IsRestricted: true, AllowedGroups: []string{"moderators"}},
		},
	}
	api := &domaintest.APIClient{
		Document: &domain.APIDocument{
			Links: domain.DocumentLinks{First: "http://forum.test/api/discussions"},
			Data: []domain.DiscussionResource{
				{Type: domain.ResourceDiscussions, ID: "10", Attributes: domain.DiscussionAttributes{Title: "Hello"}},
			},
		},
	}
	view := &domaintest.Renderer{Output: "<ul><li>Hello</li></ul>"}

	return tags, api, view
}

func TestTagPageService_Build(t *testing.T) {
	tags, api, view := newTagPageFixture()
	svc := NewTagPageService(tags, api, view, "Test Forum", zap.NewNop())

	actor := &domain.Actor{ID: 5, Username: "alice"}
	doc, err := svc.Build(context.Background(), actor, TagPageQuery{
		Slug: "general",
		Sort: "top",
		Q:    "welcome",
		Page: 2,
	})
	require.NoError(t, err)

	// API call
	require.Len(t, api.Calls, 1)
	assert.Same(t, actor, api.Calls[0].Actor)
	assert.Equal(t, domain.ListParams{
		Sort:   "-commentCount",
		Filter: domain.ListFilter{Q: "welcome tag:general"},
		Page:   domain.PageParams{Offset: 20, Limit: 20},
	}, api.Calls[0].Params)

	// Rendering
	require.Len(t, view.Calls, 1)
	assert.Equal(t, TagContentView, view.Calls[0].Name)
	pageView, ok := view.Calls[0].Data.(TagPageView)
	require.True(t, ok)
	assert.Same(t, api.Document, pageView.APIDocument)
	assert.Equal(t, 2, pageView.Page)
	assert.Equal(t, "general", pageView.Tag.Slug)

	// Document
	assert.Equal(t, "General - Test Forum", doc.Title)
	assert.Equal(t, "Anything goes", doc.Description)
	assert.Equal(t, view.Output, doc.Content)
	assert.Same(t, api.Document, doc.Payload["apiDocument"])
}

func TestTagPageService_Build_Defaults(t *testing.T) {
	tags, api, view := newTagPageFixture()
	svc := NewTagPageService(tags, api, view, "", zap.NewNop())

	doc, err := svc.Build(context.Background(), nil, TagPageQuery{Slug: "general"})
	require.NoError(t, err)

	assert.Equal(t, "General", doc.Title)
	require.Len(t, api.Calls, 1)
	assert.True(t, api.Calls[0].Actor.IsGuest())
	assert.Equal(t, domain.ListParams{
		Sort:   "",
		Filter: domain.ListFilter{Q: " tag:general"},
		Page:   domain.PageParams{Offset: 0, Limit: 20},
	}, api.Calls[0].Params)
	assert.Equal(t, 1, view.Calls[0].Data.(TagPageView).Page)
}

func TestTagPageService_Build_Errors(t *testing.T) {
	tests := []struct {
		name    string
		slug    string
		actor   *domain.Actor
		wantErr error
	}{
		{"unknown slug", "missing", domain.Guest(), domain.ErrTagNotFound},
		{"empty slug", "", domain.Guest(), domain.ErrTagNotFound},
		{"restricted tag", "staff", domain.Guest(), domain.ErrPermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tags, api, view := newTagPageFixture()
			svc := NewTagPageService(tags, api, view, "", zap.NewNop())

			doc, err := svc.Build(context.Background(), tt.actor, TagPageQuery{Slug: tt.slug, Page: 1})

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, doc)
			assert.Zero(t, api.CallCount(), "api must not be called when the tag is unavailable")
		})
	}
}

func TestTagPageService_Build_RestrictedTagForAllowedGroup(t *testing.T) {
	tags, api, view := newTagPageFixture()
	svc := NewTagPageService(tags, api, view, "", zap.NewNop())

	moderator := &domain.Actor{ID: 9, Groups: []string{"moderators"}}
	_, err := svc.Build(context.Background(), moderator, TagPageQuery{Slug: "staff", Page: 1})

	require.NoError(t, err)
	assert.Equal(t, " tag:staff", api.Calls[0].Params.Filter.Q)
}

func TestTagPageService_Build_APIAndRenderFailures(t *testing.T) {
	t.Run("api failure", func(t *testing.T) {
		tags, api, view := newTagPageFixture()
		api.Err = errors.New("upstream down")
		svc := NewTagPageService(tags, api, view, "", zap.NewNop())

		_, err := svc.Build(context.Background(), nil, TagPageQuery{Slug: "general"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "upstream down")
		assert.Empty(t, view.Calls)
	})

	t.Run("render failure", func(t *testing.T) {
		tags, api, view := newTagPageFixture()
		view.Err = errors.New("template missing")
		svc := NewTagPageService(tags, api, view, "", zap.NewNop())

		_, err := svc.Build(context.Background(), nil, TagPageQuery{Slug: "general"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "rendering tag page")
	})
}

func TestTagPageView_Links(t *testing.T) {
	tag := &domain.Tag{Slug: "general"}

	first := TagPageView{
		APIDocument: &domain.APIDocument{Links: domain.DocumentLinks{Next: "x"}},
		Page:        1,
		Tag:         tag,
	}
	assert.Equal(t, "/t/general?page=2", first.NextPageURL())
	assert.Equal(t, "", first.PrevPageURL())

	middle := TagPageView{
		APIDocument: &domain.APIDocument{Links: domain.DocumentLinks{Next: "x", Prev: "y"}},
		Page:        3,
		Tag:         tag,
		Sort:        "top",
		Q:           "go lang",
	}
	assert.Equal(t, "/t/general?page=4&q=go+lang&sort=top", middle.NextPageURL())
	assert.Equal(t, "/t/general?page=2&q=go+lang&sort=top", middle.PrevPageURL())
	assert.Equal(t, "/t/general?q=go+lang&sort=top", middle.PageURL(1))

	last := TagPageView{APIDocument: &domain.APIDocument{}, Page: 2, Tag: tag}
	assert.Equal(t, "", last.NextPageURL())
	assert.Equal(t, "/t/general", last.PrevPageURL())
}
