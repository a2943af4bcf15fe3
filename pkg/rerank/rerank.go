// Package rerank reorders candidate passages by semantic similarity to a
// query vector, independent of whatever score produced the candidates.
package rerank

import (
	"context"
	"fmt"
	"sort"

	"github.com/medassist-ai/medassist/backend/pkg/ai"
	"github.com/medassist-ai/medassist/backend/pkg/index"
)

// Candidate pairs a document with its embedding for re-ranking.
type Candidate struct {
	Document  index.Document
	Embedding []float32
}

// Ranked is a candidate with its recomputed similarity.
type Ranked struct {
	Document index.Document
	Score    float32
}

// Rank scores every candidate against the query vector by cosine
// similarity and returns them sorted by descending score, ties keeping
// input order. Candidates whose embedding dimension differs from the
// query are an error: silently skipping them would hide corrupt
// artifacts.
func Rank(query []float32, candidates []Candidate) ([]Ranked, error) {
	ranked := make([]Ranked, 0, len(candidates))
	for i, c := range candidates {
		if len(c.Embedding) != len(query) {
			return nil, fmt.Errorf("%w: candidate %d has dimension %d, query dimension is %d",
				index.ErrDimensionMismatch, i, len(c.Embedding), len(query))
		}
		ranked = append(ranked, Ranked{
			Document: c.Document,
			Score:    index.CosineSimilarity(query, c.Embedding),
		})
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Score > ranked[b].Score
	})
	return ranked, nil
}

// Reranker re-ranks text candidates by embedding them on demand. Used
// when candidates arrive without precomputed vectors, e.g. graph node
// descriptions.
type Reranker struct {
	embedder ai.EmbeddingClient
}

// New creates a Reranker on the given embedding client.
func New(embedder ai.EmbeddingClient) *Reranker {
	return &Reranker{embedder: embedder}
}

// RankTexts embeds the query and every candidate text, then ranks by
// cosine similarity. An embedding failure aborts the whole ranking; the
// caller decides whether original candidate order is an acceptable
// substitute.
func (r *Reranker) RankTexts(ctx context.Context, query string, docs []index.Document) ([]Ranked, error) {
	queryVec, err := r.embedder.GenerateEmbedding(ctx, []byte(query))
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	candidates := make([]Candidate, 0, len(docs))
	for _, doc := range docs {
		vec, err := r.embedder.GenerateEmbedding(ctx, []byte(doc.Text))
		if err != nil {
			return nil, fmt.Errorf("embedding candidate %q: %w", doc.ID, err)
		}
		candidates = append(candidates, Candidate{Document: doc, Embedding: vec})
	}

	return Rank(queryVec, candidates)
}
