// Package ollama implements the ai.MedicalAIClient interface against a
// locally-hosted Ollama server.
package ollama

import (
	"errors"
	"math"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/medassist-ai/medassist/backend/pkg/ai"

	"github.com/ollama/ollama/api"
	"golang.org/x/sync/semaphore"
)

// MedicalOllamaClient implements ai.MedicalAIClient using Ollama as the
// backend. It supports text generation and embeddings via locally-hosted
// models, gating concurrent requests with a weighted semaphore so a small
// Ollama instance is not overwhelmed.
type MedicalOllamaClient struct {
	embeddingModel string
	answerModel    string

	reqLock *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	timeout time.Duration

	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client

	Client *api.Client
}

// NewMedicalOllamaClientParams contains configuration options for creating a
// new MedicalOllamaClient.
type NewMedicalOllamaClientParams struct {
	EmbeddingModel string
	AnswerModel    string

	BaseURL string
	ApiKey  string

	// Timeout bounds every individual model call. Zero means 30 seconds.
	Timeout time.Duration

	MaxConcurrentRequests int64
}

type headerTransport struct {
	headers map[string]string
	rt      http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone so original request isn't modified
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		// don't overwrite if already set
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	return t.rt.RoundTrip(r)
}

// NewMedicalOllamaClient creates a new Ollama-based AI client with the
// specified configuration. It connects to the Ollama server at the given
// BaseURL (or the default if empty).
func NewMedicalOllamaClient(
	params NewMedicalOllamaClientParams,
) (*MedicalOllamaClient, error) {
	var (
		u   *url.URL
		err error
	)

	if params.BaseURL != "" {
		u, err = url.Parse(params.BaseURL)
		if err != nil {
			return nil, err
		}
	}

	httpClient := &http.Client{
		Transport: &headerTransport{
			headers: map[string]string{
				"Authorization": "Bearer " + params.ApiKey,
			},
			rt: http.DefaultTransport,
		},
	}

	cli := api.NewClient(u, httpClient)

	maxConcurrent := params.MaxConcurrentRequests
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	sem := semaphore.NewWeighted(maxConcurrent)

	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &MedicalOllamaClient{
		embeddingModel: params.EmbeddingModel,
		answerModel:    params.AnswerModel,

		reqLock: sem,

		metricsLock: sync.Mutex{},
		metrics:     ai.ModelMetrics{},

		timeout: timeout,

		baseURL:    u,
		apiKey:     params.ApiKey,
		httpClient: httpClient,

		Client: cli,
	}, nil
}

// ResetMetrics clears all accumulated token and timing metrics to zero.
func (c *MedicalOllamaClient) ResetMetrics() {
	c.metricsLock.Lock()
	c.metrics = ai.ModelMetrics{}
	c.metricsLock.Unlock()
}

// GetMetrics returns the accumulated token usage and timing metrics since the last reset.
func (c *MedicalOllamaClient) GetMetrics() ai.ModelMetrics {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	return c.metrics
}

func (c *MedicalOllamaClient) modifyMetrics(m ai.ModelMetrics) {
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

// normalizeErr maps Ollama status errors onto ai.StatusError so callers can
// classify transient failures without importing the Ollama API package.
func normalizeErr(err error) error {
	if err == nil {
		return nil
	}
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return &ai.StatusError{
			StatusCode: statusErr.StatusCode,
			Message:    statusErr.Error(),
		}
	}
	return err
}

var _ ai.MedicalAIClient = (*MedicalOllamaClient)(nil)
