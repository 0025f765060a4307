package intakes

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"jrm-intake-api/internal/events"
	"jrm-intake-api/internal/httpx/kit/testutil"
	"jrm-intake-api/internal/intake"
)

type recorder struct {
	n    *events.Notifier
	keys []string
}

func (r *recorder) Publish(_ context.Context, key string, _ []byte) error {
	r.keys = append(r.keys, key)
	return nil
}

func (r *recorder) Close() error { return nil }

// published waits for queued events and returns their routing keys.
func (r *recorder) published() []string {
	r.n.Wait()
	return r.keys
}

func open(c *fiber.Ctx) error { return c.Next() }

func newApp(t *testing.T) (*fiber.App, *intake.Store, *recorder) {
	t.Helper()
	store := testutil.NewStore(t)
	rec := &recorder{}
	rec.n = events.NewNotifier(rec, nil)
	t.Cleanup(rec.n.Close)
	app := testutil.NewApp(func(app *fiber.App) {
		Mount(app, store, rec.n, open)
	})
	return app, store, rec
}

func intakeRows(t *testing.T, app *fiber.App) []any {
	t.Helper()
	status, body := testutil.Do(t, app, http.MethodGet, "/data", nil)
	if status != http.StatusOK {
		t.Fatalf("list: %d %v", status, body)
	}
	if _, ok := body["metrics"].([]any); !ok {
		t.Fatalf("metrics missing: %v", body)
	}
	return body["jrm"].([]any)
}

func TestCreateThenList(t *testing.T) {
	app, _, rec := newApp(t)

	status, body := testutil.Do(t, app, http.MethodPost, "/jrm", map[string]any{"intakeId": "ENT-1", "status": "New"})
	if status != http.StatusOK || body["success"] != true {
		t.Fatalf("create: %d %v", status, body)
	}
	if rowid, _ := body["rowid"].(float64); rowid <= 0 {
		t.Fatalf("rowid missing: %v", body)
	}

	rows := intakeRows(t, app)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0].(map[string]any)
	if row["Intake ID"] != "ENT-1" || row["Status"] != "New" || row["Intake Name"] != nil {
		t.Fatalf("unexpected row: %v", row)
	}
	if keys := rec.published(); len(keys) != 1 || keys[0] != events.IntakeCreated {
		t.Fatalf("unexpected events: %v", keys)
	}
}

func TestCreate_BadBodies(t *testing.T) {
	app, _, _ := newApp(t)

	status, body := testutil.Do(t, app, http.MethodPost, "/jrm", `[1,2]`)
	if status != http.StatusBadRequest || body["code"] != "E_INVALID_PARAM" {
		t.Fatalf("array body: %d %v", status, body)
	}
	status, _ = testutil.Do(t, app, http.MethodPost, "/jrm", map[string]any{"status": "New"})
	if status != http.StatusBadRequest {
		t.Fatalf("missing id: %d", status)
	}
	status, _ = testutil.Do(t, app, http.MethodPost, "/jrm", map[string]any{"intakeId": "ENT-1", "intakeTags": []string{"a"}})
	if status != http.StatusBadRequest {
		t.Fatalf("array value: %d", status)
	}
}

func TestCreate_DuplicateIsStoreError(t *testing.T) {
	app, _, _ := newApp(t)
	payload := map[string]any{"intakeId": "ENT-2"}
	if status, _ := testutil.Do(t, app, http.MethodPost, "/jrm", payload); status != http.StatusOK {
		t.Fatalf("first create: %d", status)
	}
	status, body := testutil.Do(t, app, http.MethodPost, "/jrm", payload)
	if status != http.StatusInternalServerError || body["error"] == "" || body["code"] != "E_INTERNAL" {
		t.Fatalf("duplicate: %d %v", status, body)
	}
}

func TestUpdate_FullOverwrite(t *testing.T) {
	app, store, _ := newApp(t)
	if _, err := store.CreateIntake(context.Background(), intake.Payload{"intakeId": "ENT-3", "status": "New", "intakeTags": "x"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	status, body := testutil.Do(t, app, http.MethodPut, "/jrm/ENT-3", map[string]any{"intakeName": "Renamed"})
	if status != http.StatusOK || body["changes"].(float64) != 1 {
		t.Fatalf("update: %d %v", status, body)
	}
	row := intakeRows(t, app)[0].(map[string]any)
	if row["Intake Name"] != "Renamed" || row["Status"] != nil || row["Intake Tags"] != nil {
		t.Fatalf("not a full overwrite: %v", row)
	}

	status, body = testutil.Do(t, app, http.MethodPut, "/jrm/ENT-404", map[string]any{"intakeName": "x"})
	if status != http.StatusOK || body["changes"].(float64) != 0 {
		t.Fatalf("unknown id: %d %v", status, body)
	}
}

func TestPatchStatusAndAttachment(t *testing.T) {
	app, store, rec := newApp(t)
	if _, err := store.CreateIntake(context.Background(), intake.Payload{"intakeId": "ENT-4", "status": "New"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	status, body := testutil.Do(t, app, http.MethodPatch, "/jrm/ENT-4/status", map[string]any{"status": "OFS"})
	if status != http.StatusOK || body["changes"].(float64) != 1 {
		t.Fatalf("status: %d %v", status, body)
	}
	status, body = testutil.Do(t, app, http.MethodPatch, "/jrm/ENT-4/attachment", map[string]any{"attachment": "estimate.xlsx"})
	if status != http.StatusOK || body["changes"].(float64) != 1 {
		t.Fatalf("attachment: %d %v", status, body)
	}
	row := intakeRows(t, app)[0].(map[string]any)
	if row["Status"] != "OFS" || row["Attachment"] != "estimate.xlsx" {
		t.Fatalf("unexpected row: %v", row)
	}
	want := []string{events.IntakeStatusChanged, events.IntakeAttachmentChanged}
	if keys := rec.published(); len(keys) != 2 || keys[0] != want[0] || keys[1] != want[1] {
		t.Fatalf("unexpected events: %v", keys)
	}
}

func TestDelete(t *testing.T) {
	app, store, rec := newApp(t)

	status, body := testutil.Do(t, app, http.MethodDelete, "/jrm/ENT-404", nil)
	if status != http.StatusOK || body["success"] != true || body["deleted"].(float64) != 0 {
		t.Fatalf("missing intake: %d %v", status, body)
	}
	if keys := rec.published(); len(keys) != 0 {
		t.Fatalf("no-op delete emitted %v", keys)
	}

	if _, err := store.CreateIntake(context.Background(), intake.Payload{"intakeId": "ENT 5"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	status, body = testutil.Do(t, app, http.MethodDelete, "/jrm/ENT%205", nil)
	if status != http.StatusOK || body["deleted"].(float64) != 1 {
		t.Fatalf("escaped id: %d %v", status, body)
	}
}

type stalledBroker struct{ release chan struct{} }

func (b *stalledBroker) Publish(ctx context.Context, _ string, _ []byte) error {
	select {
	case <-b.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *stalledBroker) Close() error { return nil }

func TestWritesDoNotWaitForBroker(t *testing.T) {
	store := testutil.NewStore(t)
	broker := &stalledBroker{release: make(chan struct{})}
	n := events.NewNotifier(broker, nil)
	app := testutil.NewApp(func(app *fiber.App) {
		Mount(app, store, n, open)
	})

	start := time.Now()
	status, body := testutil.Do(t, app, http.MethodPost, "/jrm", map[string]any{"intakeId": "ENT-9"})
	if status != http.StatusOK || body["success"] != true {
		t.Fatalf("create: %d %v", status, body)
	}
	status, _ = testutil.Do(t, app, http.MethodPatch, "/jrm/ENT-9/status", map[string]any{"status": "OFS"})
	if status != http.StatusOK {
		t.Fatalf("status: %d", status)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("writes waited on the broker: %s", elapsed)
	}

	close(broker.release)
	n.Close()
}
