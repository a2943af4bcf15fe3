package ollama

import (
	"context"
	"strings"

	"github.com/medassist-ai/medassist/backend/pkg/ai"

	"github.com/ollama/ollama/api"
	"github.com/pkoukk/tiktoken-go"
)

// GenerateCompletion sends a single-turn prompt and returns assistant text.
func (c *MedicalOllamaClient) GenerateCompletion(
	ctx context.Context,
	prompt string,
	opts ...ai.GenerateOption,
) (string, error) {
	options := ai.GenerateOptions{
		Model:       c.answerModel,
		Temperature: 0.3,
	}
	for _, o := range opts {
		o(&options)
	}

	msgs := make([]ai.ChatMessage, 0, len(options.SystemPrompts)+1)
	for _, sp := range options.SystemPrompts {
		msgs = append(msgs, ai.ChatMessage{Role: "system", Message: sp})
	}
	msgs = append(msgs, ai.ChatMessage{Role: "user", Message: prompt})

	return c.generate(ctx, msgs, options)
}

// GenerateChat sends a multi-turn conversation and returns assistant text.
func (c *MedicalOllamaClient) GenerateChat(
	ctx context.Context,
	msgs []ai.ChatMessage,
	opts ...ai.GenerateOption,
) (string, error) {
	options := ai.GenerateOptions{
		Model:       c.answerModel,
		Temperature: 0.3,
	}
	for _, o := range opts {
		o(&options)
	}

	all := make([]ai.ChatMessage, 0, len(options.SystemPrompts)+len(msgs))
	for _, sp := range options.SystemPrompts {
		all = append(all, ai.ChatMessage{Role: "system", Message: sp})
	}
	all = append(all, msgs...)

	return c.generate(ctx, all, options)
}

func (c *MedicalOllamaClient) generate(
	ctx context.Context,
	msgs []ai.ChatMessage,
	options ai.GenerateOptions,
) (string, error) {
	apiMsgs := make([]api.Message, 0, len(msgs))
	var promptText strings.Builder
	for _, m := range msgs {
		apiMsgs = append(apiMsgs, api.Message{Role: m.Role, Content: m.Message})
		promptText.WriteString(m.Message)
		promptText.WriteString("\n")
	}

	stream := false
	req := &api.ChatRequest{
		Model:    options.Model,
		Messages: apiMsgs,
		Stream:   &stream,
		Options:  map[string]any{"temperature": options.Temperature},
	}
	if options.MaxTokens > 0 {
		req.Options["num_predict"] = options.MaxTokens
	}

	// Ollama truncates silently when the prompt exceeds the default context
	// window, so size num_ctx from the actual token count.
	tokens := 200
	enc, err := tiktoken.GetEncoding("o200k_base")
	if err != nil {
		return "", err
	}
	tokens += len(enc.Encode(promptText.String(), nil, nil))
	if tokens > 4096 {
		req.Options["num_ctx"] = tokens
	}

	rCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.reqLock.Acquire(rCtx, 1); err != nil {
		return "", err
	}
	defer c.reqLock.Release(1)

	var final api.ChatResponse
	if err := c.Client.Chat(rCtx, req, func(cr api.ChatResponse) error {
		final.Message.Content += cr.Message.Content
		if cr.Done {
			final.Done = true
			final.Metrics = cr.Metrics
		}
		return nil
	}); err != nil {
		return "", normalizeErr(err)
	}

	metrics := ai.ModelMetrics{
		InputTokens:  final.Metrics.PromptEvalCount,
		OutputTokens: final.Metrics.EvalCount,
		TotalTokens:  final.Metrics.PromptEvalCount + final.Metrics.EvalCount,
		DurationMs:   final.Metrics.TotalDuration.Milliseconds(),
	}
	c.modifyMetrics(metrics)

	if strings.TrimSpace(final.Message.Content) == "" {
		return "", ai.ErrEmptyGeneration
	}

	return final.Message.Content, nil
}
