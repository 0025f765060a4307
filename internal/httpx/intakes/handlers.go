// Package intakes provides HTTP handlers for the jrm intake table and the
// combined /data listing.
//
// Intake routes take the path id verbatim and never answer 404: an unknown
// id reports zero changes. PUT is a full overwrite, unlike the metrics edit
// which merges into the stored row.
package intakes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"jrm-intake-api/internal/events"
	"jrm-intake-api/internal/httpx/kit"
	"jrm-intake-api/internal/intake"
)

// ListHandler returns every intake and every metric row.
//
//	@Summary      List intakes and metrics
//	@Description  Two independent full-table reads; rows are keyed by column name
//	@Tags         intakes
//	@Produce      json
//	@Success      200  {object}  map[string]interface{}  "{jrm: [...], metrics: [...]}"
//	@Failure      500  {object}  map[string]interface{}
//	@Router       /data [get]
func ListHandler(store *intake.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()

		jrm, err := store.ListIntakes(ctx)
		if err != nil {
			return kit.InternalError(err.Error(), nil)
		}
		metrics, err := store.ListMetrics(ctx)
		if err != nil {
			return kit.InternalError(err.Error(), nil)
		}
		return kit.Reply(c, fiber.Map{"jrm": jrm, "metrics": metrics})
	}
}

// CreateHandler inserts an intake.
//
//	@Summary      Create intake
//	@Description  Absent fields are stored as null. A duplicate intakeId fails at the store.
//	@Tags         intakes
//	@Accept       json
//	@Produce      json
//	@Param        body  body      map[string]interface{}  true  "intakeId, intakeName, intakeComments, intakeTags, status, attachment, date, approvedDate"
//	@Success      200   {object}  map[string]interface{}  "{success, rowid}"
//	@Failure      400   {object}  map[string]interface{}
//	@Failure      500   {object}  map[string]interface{}
//	@Security     BearerAuth
//	@Router       /jrm [post]
func CreateHandler(store *intake.Store, n *events.Notifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := kit.Payload(c)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()

		rowID, err := store.CreateIntake(ctx, p)
		if err != nil {
			return kit.StoreError(err)
		}
		n.Emit(events.IntakeCreated, intake.IDString(p[intake.KeyIntakeID]), fiber.Map{"rowid": rowID})
		return kit.Reply(c, fiber.Map{"success": true, "rowid": rowID})
	}
}

// UpdateHandler overwrites every mutable column of one intake.
//
//	@Summary      Replace intake
//	@Description  Full overwrite: fields missing from the body become null. Unknown ids report changes 0.
//	@Tags         intakes
//	@Accept       json
//	@Produce      json
//	@Param        intakeId  path      string                  true  "intake id, used verbatim"
//	@Param        body      body      map[string]interface{}  true  "intakeName, intakeComments, intakeTags, status, attachment, date, approvedDate"
//	@Success      200       {object}  map[string]interface{}  "{success, changes}"
//	@Failure      400       {object}  map[string]interface{}
//	@Failure      500       {object}  map[string]interface{}
//	@Security     BearerAuth
//	@Router       /jrm/{intakeId} [put]
func UpdateHandler(store *intake.Store, n *events.Notifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := kit.Payload(c)
		if err != nil {
			return err
		}
		id := c.Params("intakeId")
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()

		changes, err := store.ReplaceIntake(ctx, id, p)
		if err != nil {
			return kit.StoreError(err)
		}
		if changes > 0 {
			n.Emit(events.IntakeUpdated, id, nil)
		}
		return kit.Reply(c, fiber.Map{"success": true, "changes": changes})
	}
}

// StatusHandler sets the Status column of one intake.
//
//	@Summary      Set intake status
//	@Tags         intakes
//	@Accept       json
//	@Produce      json
//	@Param        intakeId  path      string                  true  "intake id, used verbatim"
//	@Param        body      body      map[string]interface{}  true  "{status}"
//	@Success      200       {object}  map[string]interface{}  "{success, changes}"
//	@Failure      400       {object}  map[string]interface{}
//	@Failure      500       {object}  map[string]interface{}
//	@Security     BearerAuth
//	@Router       /jrm/{intakeId}/status [patch]
func StatusHandler(store *intake.Store, n *events.Notifier) fiber.Handler {
	return setColumn(n, events.IntakeStatusChanged, intake.KeyStatus, store.SetStatus)
}

// AttachmentHandler sets the Attachment column of one intake.
//
//	@Summary      Set intake attachment
//	@Tags         intakes
//	@Accept       json
//	@Produce      json
//	@Param        intakeId  path      string                  true  "intake id, used verbatim"
//	@Param        body      body      map[string]interface{}  true  "{attachment}"
//	@Success      200       {object}  map[string]interface{}  "{success, changes}"
//	@Failure      400       {object}  map[string]interface{}
//	@Failure      500       {object}  map[string]interface{}
//	@Security     BearerAuth
//	@Router       /jrm/{intakeId}/attachment [patch]
func AttachmentHandler(store *intake.Store, n *events.Notifier) fiber.Handler {
	return setColumn(n, events.IntakeAttachmentChanged, intake.KeyAttachment, store.SetAttachment)
}

func setColumn(n *events.Notifier, event, key string, set func(context.Context, string, any) (int64, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := kit.Payload(c)
		if err != nil {
			return err
		}
		id := c.Params("intakeId")
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()

		changes, err := set(ctx, id, p[key])
		if err != nil {
			return kit.StoreError(err)
		}
		if changes > 0 {
			n.Emit(event, id, fiber.Map{key: p[key]})
		}
		return kit.Reply(c, fiber.Map{"success": true, "changes": changes})
	}
}

// DeleteHandler removes one intake. Its metrics row, if any, is kept.
//
//	@Summary      Delete intake
//	@Tags         intakes
//	@Produce      json
//	@Param        intakeId  path      string  true  "intake id, used verbatim"
//	@Success      200       {object}  map[string]interface{}  "{success, deleted}"
//	@Failure      500       {object}  map[string]interface{}
//	@Security     BearerAuth
//	@Router       /jrm/{intakeId} [delete]
func DeleteHandler(store *intake.Store, n *events.Notifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("intakeId")
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()

		deleted, err := store.DeleteIntake(ctx, id)
		if err != nil {
			return kit.InternalError(err.Error(), nil)
		}
		if deleted > 0 {
			n.Emit(events.IntakeDeleted, id, nil)
		}
		return kit.Reply(c, fiber.Map{"success": true, "deleted": deleted})
	}
}

// Mount registers the intake routes. guard runs before every write.
func Mount(r fiber.Router, store *intake.Store, n *events.Notifier, guard fiber.Handler) {
	r.Get("/data", ListHandler(store))
	r.Post("/jrm", guard, CreateHandler(store, n))
	r.Put("/jrm/:intakeId", guard, UpdateHandler(store, n))
	r.Patch("/jrm/:intakeId/status", guard, StatusHandler(store, n))
	r.Patch("/jrm/:intakeId/attachment", guard, AttachmentHandler(store, n))
	r.Delete("/jrm/:intakeId", guard, DeleteHandler(store, n))
}
