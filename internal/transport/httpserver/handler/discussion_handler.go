package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"forum-tags-service/internal/app/service"
	"forum-tags-service/internal/domain"
	"forum-tags-service/internal/transport/httpserver/dto"
	"forum-tags-service/internal/transport/httpserver/middleware"
	"forum-tags-service/internal/validator"
)

// MIMEJSONAPI is the media type of listing responses.
const MIMEJSONAPI = "application/vnd.api+json"

// DiscussionHandler serves the discussion-listing API.
type DiscussionHandler struct {
	service   *service.DiscussionService
	validator *validator.Validator
	logger    *zap.Logger
}

// NewDiscussionHandler creates a new DiscussionHandler.
func NewDiscussionHandler(svc *service.DiscussionService, v *validator.Validator, logger *zap.Logger) *DiscussionHandler {
	return &DiscussionHandler{
		service:   svc,
		validator: v,
		logger:    logger,
	}
}

// List handles GET /api/discussions
func (h *DiscussionHandler) List(c *fiber.Ctx) error {
	req := dto.ListDiscussionsRequest{
		Sort:   c.Query("sort"),
		Q:      c.Query("filter[q]"),
		Offset: c.QueryInt("page[offset]"),
		Limit:  c.QueryInt("page[limit]"),
	}

	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err,
		})
	}

	doc, err := h.service.List(c.UserContext(), middleware.ActorFrom(c), req.ToListParams())
	if errors.Is(err, domain.ErrInvalidSort) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_SORT",
		})
	}
	if err != nil {
		h.logger.Error("listing discussions failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "listing failed",
			Code:  "INTERNAL_ERROR",
		})
	}

	return c.JSON(doc, MIMEJSONAPI)
}
