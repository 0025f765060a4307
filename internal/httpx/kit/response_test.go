package kit

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func decode(t *testing.T, app *fiber.App, path string) (int, map[string]any) {
	t.Helper()
	res, err := app.Test(httptest.NewRequest("GET", path, nil))
	if err != nil {
		t.Fatalf("request err: %v", err)
	}
	var body map[string]any
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return res.StatusCode, body
}

func TestOKEnvelope(t *testing.T) {
	app := fiber.New()
	app.Get("/t", func(c *fiber.Ctx) error {
		return OK(c, fiber.Map{"x": 1})
	})
	_, body := decode(t, app, "/t")
	if body["code"] != "OK" || body["message"] != "success" {
		t.Fatalf("unexpected envelope: %v", body)
	}
	data := body["data"].(map[string]any)
	if int(data["x"].(float64)) != 1 {
		t.Fatalf("unexpected data: %v", data)
	}
}

func TestReplyIsFlat(t *testing.T) {
	app := fiber.New()
	app.Get("/t", func(c *fiber.Ctx) error {
		return Reply(c, fiber.Map{"success": true, "changes": 1})
	})
	status, body := decode(t, app, "/t")
	if status != 200 || body["success"] != true || body["changes"].(float64) != 1 {
		t.Fatalf("unexpected body: %d %v", status, body)
	}
	if _, ok := body["code"]; ok {
		t.Fatalf("reply must not be wrapped: %v", body)
	}
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Get("/conflict", func(c *fiber.Ctx) error { return Conflict("Metrics for ENT-1 already exist") })
	app.Get("/bad", func(c *fiber.Ctx) error { return BadRequest("invalid JSON body", "unexpected EOF") })
	app.Get("/limit", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTooManyRequests, "rate limit exceeded") })
	app.Get("/raw", func(c *fiber.Ctx) error { return errors.New("disk I/O error") })

	tests := []struct {
		path   string
		status int
		code   string
		msg    string
	}{
		{"/conflict", 409, "E_CONFLICT", "Metrics for ENT-1 already exist"},
		{"/bad", 400, "E_INVALID_PARAM", "invalid JSON body"},
		{"/limit", 429, "E_TOO_MANY_REQUESTS", "rate limit exceeded"},
		{"/raw", 500, "E_INTERNAL", "disk I/O error"},
	}
	for _, tt := range tests {
		status, body := decode(t, app, tt.path)
		if status != tt.status || body["code"] != tt.code || body["error"] != tt.msg {
			t.Fatalf("%s: unexpected %d %v", tt.path, status, body)
		}
	}

	_, body := decode(t, app, "/bad")
	if body["details"] != "unexpected EOF" {
		t.Fatalf("details missing: %v", body)
	}
	_, body = decode(t, app, "/conflict")
	if _, ok := body["details"]; ok {
		t.Fatalf("nil details must be omitted: %v", body)
	}
}

func TestParseWindow(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Get("/w", func(c *fiber.Ctx) error {
		w, err := ParseWindow(c)
		if err != nil {
			return err
		}
		return OK(c, w)
	})

	_, body := decode(t, app, "/w?limit=500&offset=3")
	data := body["data"].(map[string]any)
	if data["limit"].(float64) != 100 || data["offset"].(float64) != 3 {
		t.Fatalf("unexpected window: %v", data)
	}
	_, body = decode(t, app, "/w?limit=0")
	if body["data"].(map[string]any)["limit"].(float64) != 1 {
		t.Fatalf("limit not clamped: %v", body)
	}
	status, _ := decode(t, app, "/w?offset=-1")
	if status != 400 {
		t.Fatalf("negative offset accepted: %d", status)
	}
}
