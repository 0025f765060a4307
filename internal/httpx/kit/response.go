package kit

import (
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

// RequestID extracts request id from headers
func RequestID(c *fiber.Ctx) string {
	rid := c.GetRespHeader("X-Request-ID")
	return lo.Ternary(rid != "", rid, c.Get("X-Request-ID"))
}

func envelope(status int, code, msg string, data any, c *fiber.Ctx) error {
	return c.Status(status).JSON(fiber.Map{
		"code":       code,
		"message":    msg,
		"data":       data,
		"request_id": RequestID(c),
	})
}

// OK sends a 200 OK envelope with data
func OK(c *fiber.Ctx, data any) error {
	return envelope(fiber.StatusOK, "OK", "success", data, c)
}

// Created sends a 201 Created envelope with data
func Created(c *fiber.Ctx, data any) error {
	return envelope(fiber.StatusCreated, "OK", "success", data, c)
}

// Reply sends body as-is with status 200. The intake and metrics routes
// answer with flat bodies such as {success, changes} rather than an
// envelope.
func Reply(c *fiber.Ctx, body fiber.Map) error {
	return c.Status(fiber.StatusOK).JSON(body)
}

// Unavailable sends a 503 envelope with data
func Unavailable(c *fiber.Ctx, data any) error {
	return envelope(fiber.StatusServiceUnavailable, "E_UNAVAILABLE", "unhealthy", data, c)
}
