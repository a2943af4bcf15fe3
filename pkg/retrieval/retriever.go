package retrieval

import (
	"context"
	"errors"
	"fmt"

	"github.com/medassist-ai/medassist/backend/pkg/ai"
	"github.com/medassist-ai/medassist/backend/pkg/index"
	"github.com/medassist-ai/medassist/backend/pkg/logger"
)

// Method names how a retrieval was answered, reported back to the client
// so the answer's provenance is visible.
type Method string

const (
	MethodSemantic Method = "semantic"
	MethodKeyword  Method = "keyword"
)

// FallbackScore is the uniform relevance assigned to keyword results.
// Keyword overlap counts live on a different scale than vector
// similarities, so the raw counts never leak into score-space.
const FallbackScore float32 = 0.1

// Retrieval is the outcome of one orchestrated retrieval.
type Retrieval struct {
	Results []index.Result
	Method  Method
}

// Retriever orchestrates the semantic path with the keyword fallback.
// The fallback triggers on missing or empty indexes and on embedding
// failures; configuration-class errors from the index propagate instead,
// because retrying or falling back cannot repair mismatched artifacts.
type Retriever struct {
	index    *index.Index
	embedder ai.EmbeddingClient
	keyword  *KeywordRetriever
}

// NewRetriever wires the orchestrator. ix may be nil when no artifacts are
// loaded; keyword must cover the same corpus as ix.
func NewRetriever(ix *index.Index, embedder ai.EmbeddingClient, keyword *KeywordRetriever) *Retriever {
	return &Retriever{index: ix, embedder: embedder, keyword: keyword}
}

// Retrieve returns up to k passages relevant to the query. Results are
// deduplicated by document id before truncation, so k distinct documents
// come back whenever the corpus has them.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) (Retrieval, error) {
	if k <= 0 {
		return Retrieval{}, fmt.Errorf("k must be positive, got %d", k)
	}

	ix := r.index
	if ix == nil || ix.Len() == 0 {
		logger.Debug("[Retrieval] No index loaded, using keyword fallback")
		return r.fallback(query, k), nil
	}

	vec, err := r.embedder.GenerateEmbedding(ctx, []byte(query))
	if err != nil {
		if ctx.Err() != nil {
			return Retrieval{}, ctx.Err()
		}
		logger.Warn("[Retrieval] Embedding failed, using keyword fallback", "err", err)
		return r.fallback(query, k), nil
	}

	// Over-fetch so duplicate document ids collapsing in dedupe still
	// leave k distinct documents.
	results, err := ix.Query(vec, 2*k)
	if err != nil {
		if errors.Is(err, index.ErrEmptyIndex) {
			return r.fallback(query, k), nil
		}
		return Retrieval{}, err
	}

	return Retrieval{Results: dedupe(results, k), Method: MethodSemantic}, nil
}

func (r *Retriever) fallback(query string, k int) Retrieval {
	results := r.keyword.Retrieve(query, 2*k)
	for i := range results {
		results[i].Score = FallbackScore
	}
	return Retrieval{Results: dedupe(results, k), Method: MethodKeyword}
}

func dedupe(results []index.Result, k int) []index.Result {
	seen := make(map[string]struct{}, len(results))
	out := make([]index.Result, 0, len(results))
	for _, res := range results {
		if _, ok := seen[res.Document.ID]; ok {
			continue
		}
		seen[res.Document.ID] = struct{}{}
		out = append(out, res)
		if len(out) == k {
			break
		}
	}
	return out
}
