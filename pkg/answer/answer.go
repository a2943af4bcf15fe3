// Package answer turns retrieved context into a user-facing answer via a
// generation model, with a verbatim-context fallback so retrieval results
// are never lost to a flaky model.
package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/medassist-ai/medassist/backend/internal/util"
	"github.com/medassist-ai/medassist/backend/pkg/ai"
	"github.com/medassist-ai/medassist/backend/pkg/index"
	"github.com/medassist-ai/medassist/backend/pkg/logger"
	"github.com/medassist-ai/medassist/backend/pkg/retrieval"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// defaultPromptBudget bounds the token count of the assembled prompt.
	// Passages past the budget are dropped whole, best-ranked first in.
	defaultPromptBudget = 3000

	// fallbackConfidencePenalty scales a result's confidence when the
	// generation model failed and the answer is verbatim context.
	fallbackConfidencePenalty = 0.5
)

// Answer is a synthesized response with its provenance.
type Answer struct {
	Text       string
	Confidence float32
	Method     retrieval.Method
	Fallback   bool
}

// Synthesizer assembles a budgeted prompt from ranked passages and calls
// the generation model, retrying once on transient failures.
type Synthesizer struct {
	generator    ai.GenerationClient
	promptBudget int
	encoding     *tiktoken.Tiktoken
}

// NewSynthesizer creates a Synthesizer on the given generation client.
// promptBudget <= 0 selects the default.
func NewSynthesizer(generator ai.GenerationClient, promptBudget int) (*Synthesizer, error) {
	if promptBudget <= 0 {
		promptBudget = defaultPromptBudget
	}
	encoding, err := tiktoken.GetEncoding("o200k_base")
	if err != nil {
		return nil, fmt.Errorf("loading token encoding: %w", err)
	}
	return &Synthesizer{
		generator:    generator,
		promptBudget: promptBudget,
		encoding:     encoding,
	}, nil
}

// Synthesize produces an answer for the question from ranked passages.
// No passages at all yields a fixed "no information" answer with zero
// confidence. A transient model failure is retried once; an empty
// generation is never retried and both fall back to the best passage
// verbatim with halved confidence.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, ret retrieval.Retrieval) (Answer, error) {
	if len(ret.Results) == 0 {
		return Answer{
			Text:       "No relevant information was found for this question.",
			Confidence: 0,
			Method:     ret.Method,
		}, nil
	}

	prompt := s.buildPrompt(question, ret.Results)

	text, err := util.RetryIfWithContext(ctx, 2, s.shouldRetry, func(rCtx context.Context) (string, error) {
		return s.generator.GenerateCompletion(rCtx, prompt, ai.WithSystemPrompts(ai.AnswerPrompt))
	})
	if err != nil {
		if ctx.Err() != nil {
			return Answer{}, ctx.Err()
		}
		logger.Warn("[Answer] Generation failed, returning top passage verbatim", "err", err)
		return Answer{
			Text:       strings.TrimSpace(ret.Results[0].Document.Text),
			Confidence: topScore(ret.Results) * fallbackConfidencePenalty,
			Method:     ret.Method,
			Fallback:   true,
		}, nil
	}

	return Answer{
		Text:       strings.TrimSpace(text),
		Confidence: topScore(ret.Results),
		Method:     ret.Method,
	}, nil
}

func (s *Synthesizer) shouldRetry(err error) bool {
	if errors.Is(err, ai.ErrEmptyGeneration) {
		return false
	}
	return ai.IsTransient(err)
}

// buildPrompt stacks passages under the question until the token budget
// is exhausted. The first passage always goes in, even oversized, so the
// prompt is never context-free.
func (s *Synthesizer) buildPrompt(question string, results []index.Result) string {
	var b strings.Builder
	b.WriteString("Context:\n")

	used := s.countTokens(question) + s.countTokens(ai.AnswerPrompt)
	for i, res := range results {
		passage := strings.TrimSpace(res.Document.Text)
		cost := s.countTokens(passage)
		if i > 0 && used+cost > s.promptBudget {
			break
		}
		b.WriteString(passage)
		b.WriteString("\n\n")
		used += cost
	}

	b.WriteString("Question: ")
	b.WriteString(question)
	return b.String()
}

func (s *Synthesizer) countTokens(text string) int {
	return len(s.encoding.Encode(text, nil, nil))
}

func topScore(results []index.Result) float32 {
	score := results[0].Score
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
