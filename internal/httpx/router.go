// Package httpx wires the HTTP surface: common middleware, health, docs
// and the intake, metrics and search routes.
package httpx

import (
	"context"

	"github.com/gofiber/fiber/v2"
	fiberSwagger "github.com/swaggo/fiber-swagger"

	"jrm-intake-api/internal/auth"
	"jrm-intake-api/internal/config"
	"jrm-intake-api/internal/esx"
	"jrm-intake-api/internal/events"
	"jrm-intake-api/internal/httpx/intakes"
	"jrm-intake-api/internal/httpx/metrics"
	"jrm-intake-api/internal/httpx/mw"
	"jrm-intake-api/internal/httpx/search"
	"jrm-intake-api/internal/intake"
	"jrm-intake-api/internal/redisx"
)

// Deps are the handles shared by all routes. Store is required; the rest
// are optional.
type Deps struct {
	Store    *intake.Store
	Notifier *events.Notifier
	ES       *esx.Client
	Redis    *redisx.Client
	Limiter  *mw.RateLimiter
	// Config returns the live configuration.
	Config func() *config.Config
}

func Register(app *fiber.App, d Deps) {
	if d.Config == nil {
		static := &config.Config{}
		d.Config = func() *config.Config { return static }
	}
	cfg := d.Config()

	checks := map[string]Check{"db": d.Store.Ping}
	if d.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return redisx.Ping(ctx, d.Redis) }
	}
	app.Get("/health", HealthHandler(checks))
	app.Get("/swagger/*", fiberSwagger.WrapHandler)

	app.Use(mw.JWTMiddlewareDynamic(auth.Parser(d.Config)))
	if d.Limiter != nil {
		app.Use(d.Limiter.Handler())
	}

	guard := writeGuard(d.Config)
	intakes.Mount(app, d.Store, d.Notifier, guard)
	metrics.Mount(app, d.Store, d.Notifier, guard)
	app.Get("/search/intakes", search.IntakesHandler(d.ES, cfg.ES.Index))

	if cfg.Server.StaticDir != "" {
		app.Static("/", cfg.Server.StaticDir)
	}
}

// writeGuard requires a user token on writes while auth is configured.
func writeGuard(current func() *config.Config) fiber.Handler {
	requireUser := mw.RequireUser()
	return func(c *fiber.Ctx) error {
		if current().AuthEnabled() {
			return requireUser(c)
		}
		return c.Next()
	}
}
