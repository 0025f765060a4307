package kit

import (
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

// Window is an offset/limit slice of a result set.
type Window struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ParseWindow reads offset and limit query params. Limit is clamped to
// 1..100 (default 20); a negative offset is rejected.
func ParseWindow(c *fiber.Ctx) (Window, error) {
	w := Window{
		Limit:  lo.Clamp(c.QueryInt("limit", 20), 1, 100),
		Offset: c.QueryInt("offset", 0),
	}
	if w.Offset < 0 {
		return w, BadRequest("invalid offset", c.Query("offset"))
	}
	return w, nil
}
