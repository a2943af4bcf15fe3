package routes

import (
	"net/http"

	"github.com/medassist-ai/medassist/backend/internal/server/middleware"
	"github.com/medassist-ai/medassist/backend/pkg/logger"
	"github.com/medassist-ai/medassist/backend/pkg/recommend"
	"github.com/medassist-ai/medassist/backend/pkg/rerank"

	"github.com/labstack/echo/v4"
)

const defaultRecommendTopK = 5

// RecommendHandler suggests drugs for a set of symptoms using the
// knowledge graph and the drug catalog.
func RecommendHandler(c echo.Context) error {
	type recommendBody struct {
		Symptoms       []string `json:"symptoms" validate:"required,min=1,dive,max=200"`
		AdditionalInfo string   `json:"additional_info" validate:"omitempty,max=2000"`
		TopK           int      `json:"top_k" validate:"omitempty,min=1,max=20"`
	}

	type recommendResponse struct {
		Message string `json:"message,omitempty"`
		*recommend.Result
	}

	data := new(recommendBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, recommendResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, recommendResponse{
			Message: "Invalid request body",
		})
	}
	if data.TopK == 0 {
		data.TopK = defaultRecommendTopK
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	snap := app.Snapshots.Get()
	if snap == nil || snap.Catalog == nil {
		return c.JSON(http.StatusServiceUnavailable, recommendResponse{
			Message: "Drug catalog is not loaded",
		})
	}

	recommender := recommend.NewRecommender(
		app.Snapshots,
		snap.Catalog,
		rerank.New(app.AiClient),
		app.AiClient,
	)

	result, err := recommender.Recommend(ctx, recommend.Request{
		Symptoms:       data.Symptoms,
		AdditionalInfo: data.AdditionalInfo,
		TopK:           data.TopK,
	})
	if err != nil {
		logger.Error("[Recommend] Pipeline failed", "err", err)
		return c.JSON(http.StatusBadRequest, recommendResponse{
			Message: "Recommendation failed",
		})
	}

	return c.JSON(http.StatusOK, recommendResponse{Result: &result})
}
