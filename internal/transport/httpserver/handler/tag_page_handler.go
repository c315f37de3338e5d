// Package handler provides HTTP handlers for the forum frontend and API.
package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"forum-tags-service/internal/app/service"
	"forum-tags-service/internal/domain"
	"forum-tags-service/internal/render"
	"forum-tags-service/internal/transport/httpserver/dto"
	"forum-tags-service/internal/transport/httpserver/middleware"
)

// TagPageHandler serves the server-rendered tag page.
type TagPageHandler struct {
	service *service.TagPageService
	view    domain.Renderer
	title   string
	logger  *zap.Logger
}

// NewTagPageHandler creates a new TagPageHandler.
func NewTagPageHandler(svc *service.TagPageService, view domain.Renderer, title string, logger *zap.Logger) *TagPageHandler {
	return &TagPageHandler{
		service: svc,
		view:    view,
		title:   title,
		logger:  logger,
	}
}

// Show handles GET /t/:slug
func (h *TagPageHandler) Show(c *fiber.Ctx) error {
	req := dto.TagPageRequest{
		Slug: c.Params("slug"),
		Sort: c.Query("sort"),
		Q:    c.Query("q"),
		Page: c.QueryInt("page", 1),
	}

	document, err := h.service.Build(c.UserContext(), middleware.ActorFrom(c), req.ToQuery())
	switch {
	case errors.Is(err, domain.ErrTagNotFound), errors.Is(err, domain.ErrPermissionDenied):
		return h.notFound(c)
	case err != nil:
		h.logger.Error("building tag page failed", zap.String("slug", req.Slug), zap.Error(err))
		return fiber.NewError(fiber.StatusBadGateway, "discussion listing unavailable")
	}

	return c.Render(render.AppView, document)
}

// notFound renders the error view inside the app layout. Restricted tags
// answer the same way as missing ones.
func (h *TagPageHandler) notFound(c *fiber.Ctx) error {
	content, err := h.view.Make(render.NotFoundView, nil)
	if err != nil {
		return err
	}

	title := "Not Found"
	if h.title != "" {
		title += " - " + h.title
	}
	document := domain.NewDocument(title)
	document.Content = content

	return c.Status(fiber.StatusNotFound).Render(render.AppView, document)
}
