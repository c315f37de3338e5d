package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"forum-tags-service/internal/domain"
	"forum-tags-service/internal/transport/httpserver/dto"
)

const actorKey = "actor"

// Actor resolves the acting user from an "Authorization: Token <token>"
// header and stores it on the request. Requests without a token act as guest;
// an unknown token is rejected with 401.
func Actor(users domain.UserRepository, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := tokenFromHeader(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			c.Locals(actorKey, domain.Guest())
			return c.Next()
		}

		actor, err := users.FindByToken(c.UserContext(), token)
		if errors.Is(err, domain.ErrUnauthorized) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: "invalid access token",
				Code:  "UNAUTHORIZED",
			})
		}
		if err != nil {
			logger.Error("resolving actor failed", zap.Error(err))
			return err
		}

		c.Locals(actorKey, actor)

		return c.Next()
	}
}

// ActorFrom returns the actor stored by Actor, or a guest.
func ActorFrom(c *fiber.Ctx) *domain.Actor {
	if actor, ok := c.Locals(actorKey).(*domain.Actor); ok && actor != nil {
		return actor
	}

	return domain.Guest()
}

// tokenFromHeader accepts "Token <t>" and "Bearer <t>".
func tokenFromHeader(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return ""
	}
	if !strings.EqualFold(scheme, "Token") && !strings.EqualFold(scheme, "Bearer") {
		return ""
	}

	// Flarum clients send Token <token>;userId=<id>.
	token, _, _ = strings.Cut(strings.TrimSpace(token), ";")

	return token
}
