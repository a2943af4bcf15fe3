package routes

import (
	"encoding/json"
	"net/http"

	"github.com/medassist-ai/medassist/backend/internal/queue"
	"github.com/medassist-ai/medassist/backend/internal/server/middleware"
	"github.com/medassist-ai/medassist/backend/internal/util"
	"github.com/medassist-ai/medassist/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

// IngestDatasetHandler queues a dataset CSV for ingestion by the worker.
func IngestDatasetHandler(c echo.Context) error {
	type ingestBody struct {
		Dataset string `json:"dataset" validate:"required,max=100"`
		FileKey string `json:"file_key" validate:"required,max=500"`
	}

	type ingestResponse struct {
		Message       string `json:"message"`
		CorrelationID string `json:"correlation_id,omitempty"`
	}

	data := new(ingestBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, ingestResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, ingestResponse{
			Message: "Invalid request body",
		})
	}

	app := c.(*middleware.AppContext).App

	correlationID := util.NewCorrelationID()

	msg := queue.QueueIngestMsg{
		Message:       "Ingest dataset",
		Dataset:       data.Dataset,
		FileKey:       data.FileKey,
		CorrelationID: correlationID,
	}
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ingestResponse{
			Message: "Failed to encode queue message",
		})
	}

	if err := queue.PublishFIFO(app.Queue, queue.IngestQueue, msgBytes); err != nil {
		logger.Error("[Ingest] Failed to publish", "dataset", data.Dataset, "err", err)
		return c.JSON(http.StatusInternalServerError, ingestResponse{
			Message: "Failed to queue ingestion",
		})
	}

	logger.Info("[Ingest] Dataset queued", "dataset", data.Dataset, "file_key", data.FileKey, "correlation_id", correlationID)
	return c.JSON(http.StatusAccepted, ingestResponse{
		Message:       "Dataset queued for ingestion",
		CorrelationID: correlationID,
	})
}
