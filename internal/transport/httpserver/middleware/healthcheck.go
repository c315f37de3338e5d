package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
)

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// NewHealthCheck creates the Kubernetes-style probes:
//
//   - GET /livez  - the process is running
//   - GET /readyz - every readiness check passes
//
// Register it before other middleware so probes bypass logging and auth.
func NewHealthCheck(checks ...ReadinessCheck) fiber.Handler {
	return healthcheck.New(healthcheck.Config{
		LivenessEndpoint: "/livez",
		LivenessProbe: func(_ *fiber.Ctx) bool {
			return true
		},

		ReadinessEndpoint: "/readyz",
		ReadinessProbe: func(c *fiber.Ctx) bool {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()

			for _, check := range checks {
				if check(ctx) != nil {
					return false
				}
			}

			return true
		},
	})
}
