// Package httpserver provides HTTP server and routing.
package httpserver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"forum-tags-service/internal/app/service"
	"forum-tags-service/internal/domain"
	"forum-tags-service/internal/render"
	"forum-tags-service/internal/transport/httpserver/dto"
	"forum-tags-service/internal/transport/httpserver/handler"
	"forum-tags-service/internal/transport/httpserver/middleware"
	"forum-tags-service/internal/validator"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port        int
	BodyLimit   int
	Debug       bool
	Title       string
	CORSOrigins []string
}

// Dependencies are the services the routes are served by.
type Dependencies struct {
	TagPages    *service.TagPageService
	Discussions *service.DiscussionService
	Tags        *service.TagService
	Stats       handler.StatsRefresher
	Users       domain.UserRepository
	Renderer    *render.Renderer
	Validator   *validator.Validator

	// ReadinessChecks back /readyz.
	ReadinessChecks []middleware.ReadinessCheck
}

// Server wraps Fiber app with handlers.
type Server struct {
	App    *fiber.App
	Logger *zap.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(cfg ServerConfig, deps Dependencies, logger *zap.Logger) *Server {
	engine := deps.Renderer.Engine()
	if cfg.Debug {
		engine.Debug(true)
	}

	app := fiber.New(fiber.Config{
		AppName:      "forum-tags-service",
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: errorHandler(logger),
		Views:        engine,
		Immutable:    true,
		UnescapePath: true,
	})

	// Probes are registered first so they bypass logging and auth.
	app.Use(middleware.NewHealthCheck(deps.ReadinessChecks...))

	app.Use(requestid.New())
	app.Use(middleware.Recover(logger))
	app.Use(middleware.Logger(logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins(cfg.CORSOrigins),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(compress.New())
	app.Use(middleware.Actor(deps.Users, logger))

	registerRoutes(app,
		handler.NewTagPageHandler(deps.TagPages, deps.Renderer, cfg.Title, logger),
		handler.NewDiscussionHandler(deps.Discussions, deps.Validator, logger),
		handler.NewTagHandler(deps.Tags, logger),
		handler.NewAdminHandler(deps.Stats, logger),
	)

	return &Server{
		App:    app,
		Logger: logger,
	}
}

func corsOrigins(origins []string) string {
	if len(origins) == 0 {
		return "*"
	}

	return strings.Join(origins, ",")
}

// registerRoutes sets up the frontend and API routes.
func registerRoutes(
	app *fiber.App,
	tagPageHandler *handler.TagPageHandler,
	discussionHandler *handler.DiscussionHandler,
	tagHandler *handler.TagHandler,
	adminHandler *handler.AdminHandler,
) {
	// Frontend
	app.Get("/t/:slug", tagPageHandler.Show)

	api := app.Group("/api")

	api.Get("/discussions", discussionHandler.List)

	tags := api.Group("/tags")
	tags.Get("/", tagHandler.List)
	tags.Get("/:slug", tagHandler.Get)

	admin := api.Group("/admin")
	admin.Post("/tags/refresh-stats", adminHandler.RefreshStats)
}

// statusFor maps domain errors that reach the error handler to HTTP codes.
func statusFor(err error) int {
	var e *fiber.Error
	switch {
	case errors.As(err, &e):
		return e.Code
	case errors.Is(err, domain.ErrTagNotFound), errors.Is(err, domain.ErrPermissionDenied):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrInvalidSort):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// errorHandler logs by status code: 404 at debug, other 4xx at warn, 5xx at
// error. Internal error messages are not sent to clients.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := statusFor(err)

		switch {
		case code == fiber.StatusNotFound:
			logger.Debug("resource not found",
				zap.String("path", c.Path()),
				zap.String("method", c.Method()),
			)
		case code >= 500:
			logger.Error("server error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
			)
		default:
			logger.Warn("client error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
			)
		}

		message := err.Error()
		if code == fiber.StatusInternalServerError {
			message = "internal server error"
		}

		return c.Status(code).JSON(dto.ErrorResponse{
			Error: message,
			Code:  errorCode(code),
		})
	}
}

// errorCode turns a status into a code such as NOT_FOUND.
func errorCode(status int) string {
	return strings.ToUpper(strings.ReplaceAll(utils.StatusMessage(status), " ", "_"))
}

// Start starts the HTTP server.
func (s *Server) Start(port int) error {
	s.Logger.Info("starting HTTP server", zap.Int("port", port))

	return s.App.Listen(fmt.Sprintf(":%d", port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	s.Logger.Info("shutting down HTTP server")

	return s.App.Shutdown()
}
