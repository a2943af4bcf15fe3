package server

import (
	"github.com/medassist-ai/medassist/backend/internal/server/middleware"
	"github.com/medassist-ai/medassist/backend/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api")

	// Query routes
	apiRoutes.POST("/ask", routes.AskHandler)
	apiRoutes.POST("/recommend", routes.RecommendHandler)

	// Catalog and graph routes
	apiRoutes.GET("/drugs", routes.SearchDrugsHandler)
	apiRoutes.GET("/graph", routes.GetGraphHandler)
	apiRoutes.GET("/graph/export", routes.ExportGraphHandler)
	apiRoutes.GET("/datasets", routes.GetDatasetsHandler)

	// Admin routes
	adminRoutes := apiRoutes.Group("/admin", middleware.AdminAuthMiddleware)
	adminRoutes.POST("/ingest", routes.IngestDatasetHandler)
	adminRoutes.DELETE("/datasets/:name", routes.DeleteDatasetHandler)
	adminRoutes.POST("/reload", routes.ReloadSnapshotHandler)
}
