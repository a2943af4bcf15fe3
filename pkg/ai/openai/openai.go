// Package openai implements the ai.MedicalAIClient interface against any
// OpenAI-compatible API.
package openai

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/medassist-ai/medassist/backend/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/semaphore"
)

// MedicalOpenAIClient is a client for the AI models used by the question
// answering and recommendation pipelines. It manages separate OpenAI
// clients for embeddings and chat so the two concerns can be pointed at
// different providers.
//
// A MedicalOpenAIClient should be created using NewMedicalOpenAIClient.
type MedicalOpenAIClient struct {
	embeddingModel string
	answerModel    string

	embeddingURL string
	embeddingKey string
	chatURL      string
	chatKey      string

	reqLock *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	timeout time.Duration

	ChatClient      *openai.Client
	EmbeddingClient *openai.Client
}

// NewMedicalOpenAIClientParams defines the configuration parameters for
// creating a new MedicalOpenAIClient.
//
// EmbeddingURL and EmbeddingKey configure the embedding API endpoint;
// ChatURL and ChatKey configure the chat endpoint. Empty URLs fall back
// to the official OpenAI endpoint.
type NewMedicalOpenAIClientParams struct {
	EmbeddingModel string
	AnswerModel    string

	EmbeddingURL string
	EmbeddingKey string
	ChatURL      string
	ChatKey      string

	// Timeout bounds every individual model call. Zero means 30 seconds.
	Timeout time.Duration

	MaxConcurrentRequests int64
}

// NewMedicalOpenAIClient creates and returns a new MedicalOpenAIClient
// configured with the provided parameters.
func NewMedicalOpenAIClient(params NewMedicalOpenAIClientParams) *MedicalOpenAIClient {
	embeddingOpts := []option.RequestOption{option.WithAPIKey(params.EmbeddingKey)}
	if params.EmbeddingURL != "" {
		embeddingOpts = append(embeddingOpts, option.WithBaseURL(params.EmbeddingURL))
	}
	embeddingClient := openai.NewClient(embeddingOpts...)

	chatOpts := []option.RequestOption{option.WithAPIKey(params.ChatKey)}
	if params.ChatURL != "" {
		chatOpts = append(chatOpts, option.WithBaseURL(params.ChatURL))
	}
	chatClient := openai.NewClient(chatOpts...)

	maxConcurrent := params.MaxConcurrentRequests
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &MedicalOpenAIClient{
		embeddingModel: params.EmbeddingModel,
		answerModel:    params.AnswerModel,

		embeddingURL: params.EmbeddingURL,
		embeddingKey: params.EmbeddingKey,
		chatURL:      params.ChatURL,
		chatKey:      params.ChatKey,

		reqLock: semaphore.NewWeighted(maxConcurrent),

		timeout: timeout,

		ChatClient:      &chatClient,
		EmbeddingClient: &embeddingClient,
	}
}

// ResetMetrics clears all accumulated token and timing metrics to zero.
func (c *MedicalOpenAIClient) ResetMetrics() {
	c.metricsLock.Lock()
	c.metrics = ai.ModelMetrics{}
	c.metricsLock.Unlock()
}

// GetMetrics returns the accumulated token usage and timing metrics since the last reset.
func (c *MedicalOpenAIClient) GetMetrics() ai.ModelMetrics {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	return c.metrics
}

func (c *MedicalOpenAIClient) modifyMetrics(m ai.ModelMetrics) {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	c.metrics.InputTokens += m.InputTokens
	c.metrics.OutputTokens += m.OutputTokens
	c.metrics.TotalTokens += m.TotalTokens
	c.metrics.DurationMs += m.DurationMs

	if c.metrics.DurationMs > 0 {
		tokensPerSecond := (float64(c.metrics.TotalTokens) * 1000.0) / float64(c.metrics.DurationMs)
		c.metrics.TokenPerSecond = float32(math.Round(tokensPerSecond*100) / 100)
	}
}

// normalizeErr maps OpenAI API errors onto ai.StatusError so callers can
// classify transient failures without importing the SDK.
func normalizeErr(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &ai.StatusError{
			StatusCode: apiErr.StatusCode,
			Message:    apiErr.Error(),
		}
	}
	return err
}

var _ ai.MedicalAIClient = (*MedicalOpenAIClient)(nil)
