package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"forum-tags-service/internal/app/service"
	"forum-tags-service/internal/job"
	"forum-tags-service/internal/transport/httpserver/dto"
	"forum-tags-service/internal/transport/httpserver/middleware"
)

// StatsRefresher runs a tag stats refresh on demand.
type StatsRefresher interface {
	RunOnce(ctx context.Context) (*service.StatsResult, error)
}

// AdminHandler handles admin-related HTTP requests.
type AdminHandler struct {
	stats  StatsRefresher
	logger *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(stats StatsRefresher, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		stats:  stats,
		logger: logger,
	}
}

// RefreshStats handles POST /api/admin/tags/refresh-stats
func (h *AdminHandler) RefreshStats(c *fiber.Ctx) error {
	actor := middleware.ActorFrom(c)
	if !actor.IsAdmin {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: "admin access required",
			Code:  "FORBIDDEN",
		})
	}

	h.logger.Info("manual tag stats refresh triggered", zap.Int64("actor_id", actor.ID))

	result, err := h.stats.RunOnce(c.UserContext())
	if errors.Is(err, job.ErrRefreshInProgress) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Code:  "REFRESH_IN_PROGRESS",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Code:  "REFRESH_FAILED",
		})
	}

	return c.JSON(dto.FromStatsResult(result))
}
