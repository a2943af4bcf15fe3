package routes

import (
	"net/http"
	"strconv"

	"github.com/medassist-ai/medassist/backend/internal/server/middleware"
	"github.com/medassist-ai/medassist/backend/pkg/dataset"

	"github.com/labstack/echo/v4"
)

const defaultDrugSearchLimit = 10

// SearchDrugsHandler searches the drug catalog by name, condition or
// side effect.
func SearchDrugsHandler(c echo.Context) error {
	type searchResponse struct {
		Message string              `json:"message,omitempty"`
		Query   string              `json:"query,omitempty"`
		Results []dataset.SearchHit `json:"results"`
	}

	query := c.QueryParam("query")
	if query == "" {
		return c.JSON(http.StatusBadRequest, searchResponse{
			Message: "Missing query parameter",
		})
	}

	limit := defaultDrugSearchLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 50 {
			return c.JSON(http.StatusBadRequest, searchResponse{
				Message: "Invalid limit parameter",
			})
		}
		limit = parsed
	}

	app := c.(*middleware.AppContext).App
	snap := app.Snapshots.Get()
	if snap == nil || snap.Catalog == nil {
		return c.JSON(http.StatusServiceUnavailable, searchResponse{
			Message: "Drug catalog is not loaded",
		})
	}

	hits := snap.Catalog.Search(query, limit)
	if hits == nil {
		hits = []dataset.SearchHit{}
	}

	return c.JSON(http.StatusOK, searchResponse{
		Query:   query,
		Results: hits,
	})
}
