package routes

import (
	"net/http"

	"github.com/medassist-ai/medassist/backend/internal/server/middleware"
	"github.com/medassist-ai/medassist/backend/pkg/logger"
	"github.com/medassist-ai/medassist/backend/pkg/store"
	corpusstorage "github.com/medassist-ai/medassist/backend/pkg/store/pgx"

	"github.com/labstack/echo/v4"
)

// GetDatasetsHandler lists every ingested dataset with its document
// count.
func GetDatasetsHandler(c echo.Context) error {
	type datasetsResponse struct {
		Message  string              `json:"message,omitempty"`
		Datasets []store.DatasetInfo `json:"datasets"`
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	dbStorage := corpusstorage.NewCorpusDBStorageWithConnection(app.DBConn)
	infos, err := dbStorage.ListDatasets(ctx)
	if err != nil {
		logger.Error("[Datasets] Listing failed", "err", err)
		return c.JSON(http.StatusInternalServerError, datasetsResponse{
			Message: "Failed to list datasets",
		})
	}
	if infos == nil {
		infos = []store.DatasetInfo{}
	}

	return c.JSON(http.StatusOK, datasetsResponse{Datasets: infos})
}
