package routes

import (
	"net/http"

	"github.com/medassist-ai/medassist/backend/internal/server/middleware"
	"github.com/medassist-ai/medassist/backend/pkg/kg"

	"github.com/labstack/echo/v4"
)

// GetGraphHandler reports knowledge graph statistics.
func GetGraphHandler(c echo.Context) error {
	type graphResponse struct {
		Message   string         `json:"message,omitempty"`
		Nodes     int            `json:"nodes"`
		Edges     int            `json:"edges"`
		NodeTypes map[string]int `json:"node_types,omitempty"`
	}

	app := c.(*middleware.AppContext).App
	snap := app.Snapshots.Get()
	if snap == nil || snap.Graph == nil {
		return c.JSON(http.StatusServiceUnavailable, graphResponse{
			Message: "Knowledge graph is not loaded",
		})
	}

	byType := make(map[string]int)
	for _, n := range snap.Graph.Nodes() {
		byType[string(n.Type)]++
	}

	return c.JSON(http.StatusOK, graphResponse{
		Nodes:     snap.Graph.NodeCount(),
		Edges:     snap.Graph.EdgeCount(),
		NodeTypes: byType,
	})
}

// ExportGraphHandler streams the knowledge graph as a GraphML document.
func ExportGraphHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	snap := app.Snapshots.Get()
	if snap == nil || snap.Graph == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"message": "Knowledge graph is not loaded",
		})
	}

	c.Response().Header().Set(echo.HeaderContentType, "application/graphml+xml")
	c.Response().WriteHeader(http.StatusOK)
	return kg.WriteGraphML(c.Response(), snap.Graph, true)
}
