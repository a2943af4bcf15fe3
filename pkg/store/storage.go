// Package store defines the persistence interface for the retrieval
// corpus and the knowledge graph.
package store

import (
	"context"

	"github.com/medassist-ai/medassist/backend/pkg/index"
	"github.com/medassist-ai/medassist/backend/pkg/kg"
)

// EmbeddedDocument pairs a corpus document with its embedding for
// persistence.
type EmbeddedDocument struct {
	Document  index.Document
	Embedding []float32
}

// DatasetInfo describes one ingested dataset.
type DatasetInfo struct {
	Name          string `json:"name"`
	DocumentCount int    `json:"document_count"`
}

// CorpusStorage persists the embedded corpus and the knowledge graph
// built by the ingestion worker and loads them back for serving.
type CorpusStorage interface {
	SaveDocuments(ctx context.Context, dataset string, docs []EmbeddedDocument) error
	LoadDocuments(ctx context.Context) ([]EmbeddedDocument, error)
	DeleteDataset(ctx context.Context, dataset string) error
	ListDatasets(ctx context.Context) ([]DatasetInfo, error)

	SaveGraph(ctx context.Context, nodes []kg.Node, edges []kg.Edge) error
	LoadGraph(ctx context.Context) ([]kg.Node, []kg.Edge, error)
}

// ChunkRange invokes fn over [start, end) windows of at most chunk
// elements covering n.
func ChunkRange(n, chunk int, fn func(start, end int) error) error {
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		if err := fn(start, end); err != nil {
			return err
		}
	}
	return nil
}
