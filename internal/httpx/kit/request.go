package kit

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"jrm-intake-api/internal/intake"
)

// Payload decodes the request body as a JSON object. An empty body is an
// empty payload.
func Payload(c *fiber.Ctx) (intake.Payload, error) {
	p := intake.Payload{}
	body := c.Body()
	if len(body) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, BadRequest("request body must be a JSON object", err.Error())
	}
	if p == nil {
		p = intake.Payload{}
	}
	return p, nil
}

// StoreError maps intake store errors onto API errors. Anything unknown is
// a 500 carrying the store's own message.
func StoreError(err error) error {
	var ie *intake.Error
	if !errors.As(err, &ie) {
		return InternalError(err.Error(), nil)
	}
	switch {
	case errors.Is(err, intake.ErrMetricExists):
		return Conflict(ie.Msg)
	case errors.Is(err, intake.ErrMetricNotFound):
		return NotFound(ie.Msg)
	default:
		// invalid id or value, and a metric referencing a missing intake
		return BadRequest(ie.Msg, nil)
	}
}
