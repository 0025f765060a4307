package mw

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func parser(token string) (string, string, []string, error) {
	switch token {
	case "user-token":
		return "alice", "user", nil, nil
	case "service-token":
		return "ci", "service", nil, nil
	}
	return "", "", nil, errors.New("bad token")
}

func authApp() *fiber.App {
	app := fiber.New()
	app.Use(JWTMiddlewareDynamic(parser))
	app.Get("/open", func(c *fiber.Ctx) error { return c.SendString(Subject(c)) })
	app.Post("/write", RequireUser(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	return app
}

func TestRequireUser(t *testing.T) {
	app := authApp()
	tests := []struct {
		authz string
		want  int
	}{
		{"", fiber.StatusUnauthorized},
		{"Bearer nope", fiber.StatusUnauthorized},
		{"Bearer service-token", fiber.StatusUnauthorized},
		{"Bearer user-token", fiber.StatusOK},
		{"bearer user-token", fiber.StatusOK},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("POST", "/write", nil)
		if tt.authz != "" {
			req.Header.Set("Authorization", tt.authz)
		}
		res, err := app.Test(req)
		if err != nil {
			t.Fatalf("request err: %v", err)
		}
		if res.StatusCode != tt.want {
			t.Fatalf("%q: expected %d got %d", tt.authz, tt.want, res.StatusCode)
		}
	}
}

func TestReadsStayOpen(t *testing.T) {
	res, err := authApp().Test(httptest.NewRequest("GET", "/open", nil))
	if err != nil {
		t.Fatalf("request err: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 got %d", res.StatusCode)
	}
}

func TestRateLimiter_InMemory(t *testing.T) {
	rl := NewRateLimiter(nil, 2, 60)
	app := fiber.New()
	app.Use(rl.Handler())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		res, err := app.Test(httptest.NewRequest("GET", "/", nil))
		if err != nil {
			t.Fatalf("request err: %v", err)
		}
		codes = append(codes, res.StatusCode)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != fiber.StatusTooManyRequests {
		t.Fatalf("unexpected codes: %v", codes)
	}

	rl.Update(0, 60)
	res, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("request err: %v", err)
	}
	if res.StatusCode != 200 {
		t.Fatalf("disabled limiter still blocks: %d", res.StatusCode)
	}
}
