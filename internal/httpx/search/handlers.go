// Package search serves free-text search over indexed intakes.
package search

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"jrm-intake-api/internal/esx"
	"jrm-intake-api/internal/httpx/kit"
)

// IntakesHandler searches the intake index.
//
//	@Summary      Search intakes
//	@Description  Matches name, comments, tags and status. Returns no hits when search is not configured.
//	@Tags         search
//	@Produce      json
//	@Param        q       query     string  true   "query text"
//	@Param        limit   query     int     false  "page size (1..100)"  default(20)
//	@Param        offset  query     int     false  "offset"              default(0)
//	@Success      200     {object}  map[string]interface{}
//	@Failure      400     {object}  map[string]interface{}
//	@Failure      500     {object}  map[string]interface{}
//	@Router       /search/intakes [get]
func IntakesHandler(es *esx.Client, index string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if es == nil {
			return kit.OK(c, esx.SearchResult{Hits: []esx.Hit{}})
		}
		q := strings.TrimSpace(c.Query("q"))
		if q == "" {
			return kit.BadRequest("q required", nil)
		}
		w, err := kit.ParseWindow(c)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()

		res, err := esx.SearchIntakes(ctx, es, index, q, w.Offset, w.Limit)
		if err != nil {
			return kit.InternalError("es search failed", err.Error())
		}
		return kit.OK(c, res)
	}
}
