// Package testutil builds fiber apps and stores for handler tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/gofiber/fiber/v2"

	"jrm-intake-api/internal/config"
	"jrm-intake-api/internal/db"
	"jrm-intake-api/internal/httpx/kit"
	"jrm-intake-api/internal/intake"
)

// NewApp creates a Fiber app with the standard error handler and applies
// the given mount functions.
func NewApp(mounts ...func(*fiber.App)) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: kit.ErrorHandler(), UnescapePath: true})
	for _, m := range mounts {
		if m != nil {
			m(app)
		}
	}
	return app
}

// NewStore opens a migrated SQLite store under t.TempDir.
func NewStore(t *testing.T) *intake.Store {
	t.Helper()
	return intake.NewStore(NewDriver(t))
}

// NewDriver opens and migrates a SQLite database under t.TempDir.
func NewDriver(t *testing.T) *entsql.Driver {
	t.Helper()
	cfg := &config.Config{}
	cfg.DB.Driver = "sqlite"
	cfg.DB.DSN = filepath.Join(t.TempDir(), "intake.db")
	cfg.DB.MaxOpenConns = 1
	cfg.DB.MaxIdleConns = 1
	drv, closeDB, err := db.Open(cfg)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(closeDB)
	if err := db.Migrate(context.Background(), drv); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return drv
}

// Do sends a request with an optional JSON body and decodes the JSON
// response into a map.
func Do(t *testing.T, app *fiber.App, method, path string, body any, headers ...string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	res, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	out := map[string]any{}
	if res.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(res.Body).Decode(&out); err != nil && err != io.EOF {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return res.StatusCode, out
}
