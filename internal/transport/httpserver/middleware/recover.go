package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Recover turns a panic in a later handler into a 500 handled by the
// app's error handler. The stack is logged with the request id.
func Recover(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			panicErr, ok := r.(error)
			if !ok {
				panicErr = fmt.Errorf("%v", r)
			}

			logger.Error("panic recovered",
				zap.Error(panicErr),
				zap.ByteString("stack", debug.Stack()),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Any("request_id", c.Locals("requestid")),
				zap.String("actor_scope", ActorFrom(c).Scope()),
			)

			err = fiber.NewError(fiber.StatusInternalServerError, "internal server error")
		}()

		return c.Next()
	}
}
