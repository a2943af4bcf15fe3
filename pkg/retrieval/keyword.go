// Package retrieval answers "which passages are relevant to this query"
// through a semantic vector search with a keyword fallback, so the system
// degrades instead of failing when embeddings are unavailable.
package retrieval

import (
	"sort"
	"strings"

	"github.com/medassist-ai/medassist/backend/internal/util"
	"github.com/medassist-ai/medassist/backend/pkg/index"
)

// KeywordRetriever ranks documents by case-insensitive token overlap with
// the query. It needs no embeddings and no external services, which is
// exactly why it exists.
type KeywordRetriever struct {
	docs []index.Document
}

// NewKeywordRetriever creates a retriever over the given documents. The
// slice is referenced, not copied; callers must not mutate it afterwards.
func NewKeywordRetriever(docs []index.Document) *KeywordRetriever {
	return &KeywordRetriever{docs: docs}
}

// Retrieve returns up to k documents ordered by descending overlap count,
// ties in corpus order. Documents with zero overlap are excluded, so a
// query sharing no vocabulary with the corpus yields an empty result.
func (r *KeywordRetriever) Retrieve(query string, k int) []index.Result {
	if k <= 0 {
		return nil
	}

	queryTokens := util.DedupeTokens(util.Tokenize(query))
	if len(queryTokens) == 0 {
		return nil
	}

	type scored struct {
		pos     int
		overlap int
	}
	var matches []scored
	for i, doc := range r.docs {
		docTokens := make(map[string]struct{})
		for _, t := range util.Tokenize(doc.Text) {
			docTokens[t] = struct{}{}
		}
		overlap := 0
		for _, t := range queryTokens {
			if _, ok := docTokens[t]; ok {
				overlap++
			}
		}
		if overlap > 0 {
			matches = append(matches, scored{pos: i, overlap: overlap})
		}
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].overlap > matches[b].overlap
	})
	if k > len(matches) {
		k = len(matches)
	}

	results := make([]index.Result, 0, k)
	for _, m := range matches[:k] {
		results = append(results, index.Result{
			Document: r.docs[m.pos],
			Score:    float32(m.overlap),
		})
	}
	return results
}

// ContextText concatenates result passages into a single context blob for
// prompt construction.
func ContextText(results []index.Result) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, strings.TrimSpace(r.Document.Text))
	}
	return strings.Join(parts, "\n\n")
}
