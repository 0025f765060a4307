package httpx

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"jrm-intake-api/internal/httpx/kit"
	"jrm-intake-api/internal/logx"
	"jrm-intake-api/pkg"
)

var httpxLogger = logx.GetScope("httpx")

// RegisterCommonMiddlewares registers recover, request id, CORS, timing
// headers and a structured access log.
func RegisterCommonMiddlewares(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New())
	app.Use(accessLog)
}

func accessLog(c *fiber.Ctx) error {
	start := time.Now()
	if err := c.Next(); err != nil {
		// render now so the logged status is the one sent
		if herr := c.App().Config().ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}
	latency := time.Since(start)
	c.Set("X-Response-Time", pkg.SmartDurationFormat(latency))
	c.Set("Server-Timing", pkg.ServerTiming("app", latency))

	status := c.Response().StatusCode()
	fields := []zap.Field{
		zap.String("method", c.Method()),
		zap.String("path", c.OriginalURL()),
		zap.Int("status", status),
		zap.String("latency", pkg.SmartDurationFormat(latency)),
		zap.Int64("latency_ms", latency.Milliseconds()),
		zap.String("ip", c.IP()),
		zap.String("ua", c.Get(fiber.HeaderUserAgent)),
		zap.String("request_id", kit.RequestID(c)),
	}
	if status >= fiber.StatusInternalServerError {
		httpxLogger.Warn("access", fields...)
		return nil
	}
	httpxLogger.Info("access", fields...)
	return nil
}
