// Package metrics provides HTTP handlers for the metrics table.
package metrics

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"jrm-intake-api/internal/events"
	"jrm-intake-api/internal/httpx/kit"
	"jrm-intake-api/internal/intake"
)

// Warnings returned with success:true when the metric write committed but
// the intake's Approved Date could not be updated.
const (
	WarnCreatePropagation = "Metrics inserted, but failed to update Approved Date on JRM"
	WarnEditPropagation   = "Metrics updated but failed to update JRM approved date"
)

// CreateHandler stores the metrics of one intake.
//
//	@Summary      Create metrics
//	@Description  intakeId is normalized to ENT-<n>. The intake must exist and have no metrics yet.
//	@Description  approvedDate is copied onto the intake; if that fails the metrics are kept and a warning is returned.
//	@Tags         metrics
//	@Accept       json
//	@Produce      json
//	@Param        body  body      map[string]interface{}  true  "intakeId, the 24 metric keys and approvedDate"
//	@Success      200   {object}  map[string]interface{}  "{success, metricRowId, updatedApprovedDate} or {success, warning}"
//	@Failure      400   {object}  map[string]interface{}  "intake does not exist or invalid id"
//	@Failure      409   {object}  map[string]interface{}  "metrics already exist"
//	@Failure      500   {object}  map[string]interface{}
//	@Security     BearerAuth
//	@Router       /metrics [post]
func CreateHandler(store *intake.Store, n *events.Notifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := kit.Payload(c)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()

		res, err := store.CreateMetric(ctx, p)
		if err != nil {
			return kit.StoreError(err)
		}
		n.Emit(events.MetricCreated, res.IntakeID, fiber.Map{"rowid": res.RowID})

		if res.PropagationErr != nil {
			return kit.Reply(c, fiber.Map{"success": true, "warning": WarnCreatePropagation})
		}
		body := fiber.Map{"success": true, "metricRowId": res.RowID}
		if p.Has(intake.KeyApprovedDate) {
			body["updatedApprovedDate"] = res.ApprovedDate
		}
		return kit.Reply(c, body)
	}
}

// EditHandler merges the body into the stored metrics of one intake.
//
//	@Summary      Edit metrics
//	@Description  Keys present in the body replace stored values (null clears); all other columns keep their values.
//	@Description  An approvedDate key is copied onto the intake.
//	@Tags         metrics
//	@Accept       json
//	@Produce      json
//	@Param        intakeId  path      string                  true  "intake id, normalized to ENT-<n>"
//	@Param        body      body      map[string]interface{}  true  "any subset of the metric keys, optionally approvedDate"
//	@Success      200       {object}  map[string]interface{}  "{success, changes[, approvedDate]} or {success, changes, warning}"
//	@Failure      400       {object}  map[string]interface{}
//	@Failure      404       {object}  map[string]interface{}
//	@Failure      500       {object}  map[string]interface{}
//	@Security     BearerAuth
//	@Router       /metrics/{intakeId} [put]
func EditHandler(store *intake.Store, n *events.Notifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := kit.Payload(c)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()

		res, err := store.EditMetric(ctx, c.Params("intakeId"), p)
		if err != nil {
			return kit.StoreError(err)
		}
		n.Emit(events.MetricUpdated, res.IntakeID, fiber.Map{"changes": res.Changes})

		body := fiber.Map{"success": true, "changes": res.Changes}
		switch {
		case !res.ApprovedDateSet:
		case res.PropagationErr != nil:
			body["warning"] = WarnEditPropagation
		default:
			body["approvedDate"] = res.ApprovedDate
		}
		return kit.Reply(c, body)
	}
}

// DeleteHandler removes the metrics of one intake.
//
//	@Summary      Delete metrics
//	@Tags         metrics
//	@Produce      json
//	@Param        intakeId  path      string  true  "intake id, normalized to ENT-<n>"
//	@Success      200       {object}  map[string]interface{}  "{deleted: <normalized id>}"
//	@Failure      400       {object}  map[string]interface{}
//	@Failure      404       {object}  map[string]interface{}
//	@Failure      500       {object}  map[string]interface{}
//	@Security     BearerAuth
//	@Router       /metrics/{intakeId} [delete]
func DeleteHandler(store *intake.Store, n *events.Notifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()

		id, err := store.DeleteMetric(ctx, c.Params("intakeId"))
		if err != nil {
			return kit.StoreError(err)
		}
		n.Emit(events.MetricDeleted, id, nil)
		return kit.Reply(c, fiber.Map{"deleted": id})
	}
}

// Mount registers the metrics routes. guard runs before every write.
func Mount(r fiber.Router, store *intake.Store, n *events.Notifier, guard fiber.Handler) {
	r.Post("/metrics", guard, CreateHandler(store, n))
	r.Put("/metrics/:intakeId", guard, EditHandler(store, n))
	r.Delete("/metrics/:intakeId", guard, DeleteHandler(store, n))
}
