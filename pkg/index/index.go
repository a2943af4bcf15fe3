// Package index provides an in-memory flat vector index over precomputed
// document embeddings, answering top-k similarity queries by inner product
// or cosine similarity.
package index

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensionMismatch indicates a vector whose dimension differs from
	// the index dimension. This is a configuration-class error: the loaded
	// artifacts are corrupt or mismatched and no per-request fallback can
	// fix it.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrSizeMismatch indicates that the vector matrix and the document
	// metadata disagree on the number of records.
	ErrSizeMismatch = errors.New("vector and document counts differ")

	// ErrEmptyIndex indicates a query against an index holding zero
	// documents. Recoverable: callers fall back to keyword retrieval.
	ErrEmptyIndex = errors.New("index holds no documents")
)

// Metric selects how query and document vectors are compared.
type Metric int

const (
	// MetricInnerProduct scores by raw dot product. Equivalent to cosine
	// when all vectors are pre-normalized, which is how the corpus
	// artifacts are produced.
	MetricInnerProduct Metric = iota
	// MetricCosine scores by normalized dot product.
	MetricCosine
)

// Document is a unit of retrievable text. Documents are immutable after
// load and owned exclusively by the index.
type Document struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
}

// Result is a single match from a similarity query.
type Result struct {
	Document Document
	Score    float32
}

// Index stores N document vectors of a fixed dimension D and answers
// "top-k most similar" queries. It is read-only after Load and safe for
// concurrent queries.
type Index struct {
	metric  Metric
	dim     int
	vectors [][]float32
	docs    []Document
}

// New creates an empty index using the given similarity metric.
func New(metric Metric) *Index {
	return &Index{metric: metric}
}

// Load replaces the index contents with the given vectors and documents.
// The index dimension is taken from the first vector; every other vector
// must match it exactly.
func (ix *Index) Load(vectors [][]float32, docs []Document) error {
	if len(vectors) != len(docs) {
		return fmt.Errorf("%w: %d vectors, %d documents", ErrSizeMismatch, len(vectors), len(docs))
	}
	if len(vectors) == 0 {
		ix.dim = 0
		ix.vectors = nil
		ix.docs = nil
		return nil
	}

	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("%w: vector %d has dimension %d, index dimension is %d", ErrDimensionMismatch, i, len(v), dim)
		}
	}

	ix.dim = dim
	ix.vectors = vectors
	ix.docs = docs
	return nil
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int {
	return len(ix.docs)
}

// Dimension returns the feature dimension D of the indexed vectors, or 0
// for an empty index.
func (ix *Index) Dimension() int {
	return ix.dim
}

// Query returns at most k documents sorted by descending similarity to the
// query vector. Ties keep insertion order. The query dimension is checked
// strictly: a mismatched vector is an error, never truncated or padded to
// fit.
func (ix *Index) Query(query []float32, k int) ([]Result, error) {
	if len(ix.docs) == 0 {
		return nil, ErrEmptyIndex
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	if len(query) != ix.dim {
		return nil, fmt.Errorf("%w: query has dimension %d, index dimension is %d", ErrDimensionMismatch, len(query), ix.dim)
	}

	scores := make([]float32, len(ix.vectors))
	for i, v := range ix.vectors {
		switch ix.metric {
		case MetricCosine:
			scores[i] = CosineSimilarity(query, v)
		default:
			scores[i] = Dot(query, v)
		}
	}

	results := make([]Result, 0, min(k, len(scores)))
	for _, i := range SelectTopK(scores, k) {
		results = append(results, Result{Document: ix.docs[i], Score: scores[i]})
	}
	return results, nil
}
