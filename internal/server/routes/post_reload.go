package routes

import (
	"net/http"

	"github.com/medassist-ai/medassist/backend/internal/server/middleware"
	"github.com/medassist-ai/medassist/backend/internal/state"
	"github.com/medassist-ai/medassist/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ReloadSnapshotHandler rebuilds the serving snapshot from the database
// and swaps it in. In-flight requests keep the old snapshot.
func ReloadSnapshotHandler(c echo.Context) error {
	type reloadResponse struct {
		Message   string `json:"message"`
		Documents int    `json:"documents,omitempty"`
		Nodes     int    `json:"nodes,omitempty"`
		Edges     int    `json:"edges,omitempty"`
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	snap, err := state.Load(ctx, app.DBConn, app.S3)
	if err != nil {
		logger.Error("[Reload] Snapshot rebuild failed", "err", err)
		return c.JSON(http.StatusInternalServerError, reloadResponse{
			Message: "Failed to reload snapshot",
		})
	}

	app.Snapshots.Swap(snap)

	return c.JSON(http.StatusOK, reloadResponse{
		Message:   "Snapshot reloaded",
		Documents: snap.Documents,
		Nodes:     snap.Graph.NodeCount(),
		Edges:     snap.Graph.EdgeCount(),
	})
}
