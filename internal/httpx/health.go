package httpx

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"jrm-intake-api/internal/httpx/kit"
)

// Check probes one dependency.
type Check func(ctx context.Context) error

// HealthHandler runs every check and reports "ok" or "degraded".
//
//	@Summary      Health check
//	@Description  Probes the store and, when configured, Redis
//	@Tags         health
//	@Produce      json
//	@Success      200  {object}  map[string]interface{}
//	@Failure      503  {object}  map[string]interface{}
//	@Router       /health [get]
func HealthHandler(checks map[string]Check) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()

		results := make(map[string]string, len(checks))
		healthy := true
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				healthy = false
				continue
			}
			results[name] = "ok"
		}
		if !healthy {
			return kit.Unavailable(c, fiber.Map{"status": "degraded", "checks": results})
		}
		return kit.OK(c, fiber.Map{"status": "ok", "checks": results})
	}
}
