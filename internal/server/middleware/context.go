package middleware

import (
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/medassist-ai/medassist/backend/internal/state"
	"github.com/medassist-ai/medassist/backend/pkg/ai"
	"github.com/medassist-ai/medassist/backend/pkg/answer"
)

// App carries the shared server dependencies into request handlers.
type App struct {
	DBConn      *pgxpool.Pool
	Queue       *amqp091.Channel
	S3          *s3.Client
	AiClient    ai.MedicalAIClient
	Synthesizer *answer.Synthesizer
	Snapshots   *state.Holder
	AdminAPIKey string
}

type AppContext struct {
	echo.Context
	App *App
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}
