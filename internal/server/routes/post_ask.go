package routes

import (
	"net/http"

	"github.com/medassist-ai/medassist/backend/internal/server/middleware"
	"github.com/medassist-ai/medassist/backend/pkg/index"
	"github.com/medassist-ai/medassist/backend/pkg/logger"
	"github.com/medassist-ai/medassist/backend/pkg/retrieval"

	"github.com/labstack/echo/v4"
)

const defaultAskTopK = 5

// AskHandler answers a free-text medical question from the corpus.
func AskHandler(c echo.Context) error {
	type askBody struct {
		Question string `json:"question" validate:"required"`
		TopK     int    `json:"top_k" validate:"omitempty,min=1,max=20"`
	}

	type askResponse struct {
		Message    string  `json:"message,omitempty"`
		Question   string  `json:"question,omitempty"`
		Answer     string  `json:"answer,omitempty"`
		Confidence float32 `json:"confidence"`
		Method     string  `json:"method,omitempty"`
		Fallback   bool    `json:"fallback,omitempty"`
	}

	data := new(askBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, askResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, askResponse{
			Message: "Invalid request body",
		})
	}
	if data.TopK == 0 {
		data.TopK = defaultAskTopK
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	snap := app.Snapshots.Get()
	var (
		ix      *index.Index
		keyword *retrieval.KeywordRetriever
	)
	if snap != nil {
		ix = snap.Index
		keyword = snap.Keyword
	} else {
		keyword = retrieval.NewKeywordRetriever(nil)
	}

	retriever := retrieval.NewRetriever(ix, app.AiClient, keyword)
	ret, err := retriever.Retrieve(ctx, data.Question, data.TopK)
	if err != nil {
		logger.Error("[Ask] Retrieval failed", "err", err)
		return c.JSON(http.StatusInternalServerError, askResponse{
			Message: "Retrieval failed",
		})
	}

	ans, err := app.Synthesizer.Synthesize(ctx, data.Question, ret)
	if err != nil {
		logger.Error("[Ask] Synthesis failed", "err", err)
		return c.JSON(http.StatusInternalServerError, askResponse{
			Message: "Answer synthesis failed",
		})
	}

	return c.JSON(http.StatusOK, askResponse{
		Question:   data.Question,
		Answer:     ans.Text,
		Confidence: ans.Confidence,
		Method:     string(ans.Method),
		Fallback:   ans.Fallback,
	})
}
