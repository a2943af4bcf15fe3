package ai

import (
	"context"
	"errors"
	"net"
	"net/http"
)

// ErrEmptyGeneration is returned when the generation service responds without
// any choices. This is a data problem, not a transient one: callers must fall
// back instead of retrying.
var ErrEmptyGeneration = errors.New("generation service returned no choices")

// ChatMessage represents a single message in a chat conversation.
//
// Role must be one of:
//   - "system"    → instructions prepended to the conversation
//   - "user"      → a user-provided message
//   - "assistant" → a message from the AI assistant
type ChatMessage struct {
	Message string `json:"message"`
	Role    string `json:"role"`
}

// GenerateOptions holds configuration for AI generation requests.
type GenerateOptions struct {
	Model         string   // Model identifier to use for generation
	SystemPrompts []string // System prompts prepended to the request
	Temperature   float64  // Sampling temperature (0.0-2.0)
	MaxTokens     int      // Upper bound on generated tokens (0 = provider default)
}

// GenerateOption is a functional option for configuring AI generation requests.
type GenerateOption func(*GenerateOptions)

// WithModel returns a GenerateOption that sets the model to use for generation.
func WithModel(model string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Model = model
	}
}

// WithSystemPrompts returns a GenerateOption that sets the system prompts
// to prepend to the generation request.
func WithSystemPrompts(prompts ...string) GenerateOption {
	return func(o *GenerateOptions) {
		o.SystemPrompts = prompts
	}
}

// WithTemperature returns a GenerateOption that sets the sampling temperature.
func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}

// WithMaxTokens returns a GenerateOption that caps the number of generated tokens.
func WithMaxTokens(max int) GenerateOption {
	return func(o *GenerateOptions) {
		o.MaxTokens = max
	}
}

// ModelMetrics contains accumulated performance metrics from AI model operations.
type ModelMetrics struct {
	InputTokens    int     `json:"input_tokens"`
	OutputTokens   int     `json:"output_tokens"`
	TotalTokens    int     `json:"total_tokens"`
	DurationMs     int64   `json:"duration_ms"`
	TokenPerSecond float32 `json:"tokens_per_second"`
}

// EmbeddingClient produces dense vectors for text.
type EmbeddingClient interface {
	// GenerateEmbedding creates a vector embedding for the given input text.
	GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error)
}

// GenerationClient produces natural-language text.
type GenerationClient interface {
	// GenerateCompletion sends a single-turn prompt and returns assistant text.
	GenerateCompletion(ctx context.Context, prompt string, opts ...GenerateOption) (string, error)
	// GenerateChat sends a multi-turn conversation and returns assistant text.
	GenerateChat(ctx context.Context, msgs []ChatMessage, opts ...GenerateOption) (string, error)
}

// MedicalAIClient defines the full set of AI operations used by the question
// answering and recommendation pipelines.
type MedicalAIClient interface {
	EmbeddingClient
	GenerationClient

	GetMetrics() ModelMetrics
	ResetMetrics()
}

// StatusError carries an HTTP status from a provider response, used to decide
// whether a failed call may be retried.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.StatusCode)
}

// IsTransient reports whether err looks like a temporary infrastructure
// failure (network timeout or 5xx-equivalent). Such calls may be retried
// once; everything else is treated as permanent.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500 || statusErr.StatusCode == http.StatusTooManyRequests
	}

	return false
}
