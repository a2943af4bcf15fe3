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

// DeleteDatasetHandler queues removal of a dataset from the corpus.
func DeleteDatasetHandler(c echo.Context) error {
	type deleteResponse struct {
		Message       string `json:"message"`
		CorrelationID string `json:"correlation_id,omitempty"`
	}

	dataset := c.Param("name")
	if dataset == "" {
		return c.JSON(http.StatusBadRequest, deleteResponse{
			Message: "Missing dataset name",
		})
	}

	app := c.(*middleware.AppContext).App

	correlationID := util.NewCorrelationID()

	msg := queue.QueueDeleteMsg{
		Message:       "Delete dataset",
		Dataset:       dataset,
		CorrelationID: correlationID,
	}
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, deleteResponse{
			Message: "Failed to encode queue message",
		})
	}

	if err := queue.PublishFIFO(app.Queue, queue.DeleteQueue, msgBytes); err != nil {
		logger.Error("[Delete] Failed to publish", "dataset", dataset, "err", err)
		return c.JSON(http.StatusInternalServerError, deleteResponse{
			Message: "Failed to queue deletion",
		})
	}

	logger.Info("[Delete] Dataset queued for deletion", "dataset", dataset, "correlation_id", correlationID)
	return c.JSON(http.StatusAccepted, deleteResponse{
		Message:       "Dataset queued for deletion",
		CorrelationID: correlationID,
	})
}
