package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"forum-tags-service/internal/domain"
)

// TagContentView is the view rendered into the tag page document.
const TagContentView = "tags/frontend/content/tag"

// TagPageQuery holds the query-string input of a tag page.
type TagPageQuery struct {
	Slug string
	Sort string
	Q    string
	Page int
}

// TagPageView is the data handed to the tag content view.
type TagPageView struct {
	APIDocument *domain.APIDocument
	Page        int
	Tag         *domain.Tag

	Sort string
	Q    string
}

// PageURL returns the tag page link for page n, keeping sort and query.
func (v TagPageView) PageURL(n int) string {
	values := url.Values{}
	if v.Sort != "" {
		values.Set("sort", v.Sort)
	}
	if v.Q != "" {
		values.Set("q", v.Q)
	}
	if n > 1 {
		values.Set("page", strconv.Itoa(n))
	}

	path := "/t/" + url.PathEscape(v.Tag.Slug)
	if len(values) == 0 {
		return path
	}

	return path + "?" + values.Encode()
}

// NextPageURL returns the link to the next page, or "" on the last page.
func (v TagPageView) NextPageURL() string {
	if !v.APIDocument.HasNext() {
		return ""
	}

	return v.PageURL(v.Page + 1)
}

// PrevPageURL returns the link to the previous page, or "" on the first page.
func (v TagPageView) PrevPageURL() string {
	if v.Page <= 1 {
		return ""
	}

	return v.PageURL(v.Page - 1)
}

// TagPageService builds the server-rendered document for a tag page.
type TagPageService struct {
	tags   domain.TagRepository
	api    domain.APIClient
	view   domain.Renderer
	title  string
	logger *zap.Logger
}

// NewTagPageService creates a new TagPageService. title is the forum title
// appended to page titles.
func NewTagPageService(
	tags domain.TagRepository,
	api domain.APIClient,
	view domain.Renderer,
	title string,
	logger *zap.Logger,
) *TagPageService {
	return &TagPageService{
		tags:   tags,
		api:    api,
		view:   view,
		title:  title,
		logger: logger,
	}
}

// Build resolves the tag, lists its discussions through the API client and
// renders them. The API document is also attached as hydration payload.
func (s *TagPageService) Build(ctx context.Context, actor *domain.Actor, q TagPageQuery) (*domain.Document, error) {
	if actor == nil {
		actor = domain.Guest()
	}
	q.Page = domain.ClampTagPage(q.Page)

	tagID, err := s.tags.GetIDForSlug(ctx, q.Slug)
	if err != nil {
		return nil, fmt.Errorf("resolving tag slug: %w", err)
	}

	tag, err := s.tags.FindOrFail(ctx, tagID, actor)
	if err != nil {
		s.logger.Debug("tag page unavailable",
			zap.String("slug", q.Slug),
			zap.Int64("tag_id", tagID),
			zap.Error(err),
		)
		return nil, err
	}

	params := domain.TagPageParams(q.Slug, q.Sort, q.Q, q.Page)

	apiDocument, err := s.api.ListDiscussions(ctx, actor, params)
	if err != nil {
		return nil, fmt.Errorf("listing discussions for tag %s: %w", tag.Slug, err)
	}

	content, err := s.view.Make(TagContentView, TagPageView{
		APIDocument: apiDocument,
		Page:        q.Page,
		Tag:         tag,
		Sort:        q.Sort,
		Q:           q.Q,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering tag page: %w", err)
	}

	document := domain.NewDocument(s.pageTitle(tag))
	document.Description = tag.Description
	document.Content = content
	document.Payload["apiDocument"] = apiDocument

	return document, nil
}

func (s *TagPageService) pageTitle(tag *domain.Tag) string {
	if s.title == "" {
		return tag.Name
	}

	return tag.Name + " - " + s.title
}
