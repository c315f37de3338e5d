package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"forum-tags-service/internal/app/service"
	"forum-tags-service/internal/domain"
	"forum-tags-service/internal/transport/httpserver/dto"
	"forum-tags-service/internal/transport/httpserver/middleware"
)

// TagHandler serves the tag API.
type TagHandler struct {
	service *service.TagService
	logger  *zap.Logger
}

// NewTagHandler creates a new TagHandler.
func NewTagHandler(svc *service.TagService, logger *zap.Logger) *TagHandler {
	return &TagHandler{
		service: svc,
		logger:  logger,
	}
}

// List handles GET /api/tags
func (h *TagHandler) List(c *fiber.Ctx) error {
	tags, err := h.service.List(c.UserContext(), middleware.ActorFrom(c))
	if err != nil {
		h.logger.Error("listing tags failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "failed to list tags",
			Code:  "INTERNAL_ERROR",
		})
	}

	return c.JSON(dto.FromTags(tags), MIMEJSONAPI)
}

// Get handles GET /api/tags/:slug
func (h *TagHandler) Get(c *fiber.Ctx) error {
	slug := c.Params("slug")

	tag, err := h.service.Get(c.UserContext(), middleware.ActorFrom(c), slug)
	if errors.Is(err, domain.ErrTagNotFound) || errors.Is(err, domain.ErrPermissionDenied) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: "tag not found",
			Code:  "NOT_FOUND",
		})
	}
	if err != nil {
		h.logger.Error("get tag failed", zap.String("slug", slug), zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "failed to get tag",
			Code:  "INTERNAL_ERROR",
		})
	}

	return c.JSON(dto.FromTag(tag), MIMEJSONAPI)
}
