// Package state holds the server's in-memory serving state: the vector
// index, the keyword fallback, the knowledge graph and the drug catalog,
// published as immutable snapshots that reloads swap atomically.
package state

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/medassist-ai/medassist/backend/internal/storage"
	"github.com/medassist-ai/medassist/backend/internal/util"
	"github.com/medassist-ai/medassist/backend/pkg/dataset"
	"github.com/medassist-ai/medassist/backend/pkg/index"
	"github.com/medassist-ai/medassist/backend/pkg/kg"
	"github.com/medassist-ai/medassist/backend/pkg/logger"
	"github.com/medassist-ai/medassist/backend/pkg/retrieval"
	corpusstorage "github.com/medassist-ai/medassist/backend/pkg/store/pgx"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Snapshot is one immutable serving state. Requests read a snapshot
// pointer once and never see a half-reloaded state.
type Snapshot struct {
	Index     *index.Index
	Keyword   *retrieval.KeywordRetriever
	Graph     kg.Graph
	Catalog   *dataset.Catalog
	Documents int
}

// Holder publishes the current snapshot to request handlers.
type Holder struct {
	current atomic.Pointer[Snapshot]
}

func (h *Holder) Get() *Snapshot {
	return h.current.Load()
}

func (h *Holder) Swap(s *Snapshot) {
	h.current.Store(s)
}

// Graph returns the current graph snapshot, nil when never loaded.
func (h *Holder) Graph() kg.Graph {
	s := h.Get()
	if s == nil {
		return nil
	}
	return s.Graph
}

// Load builds a fresh serving snapshot from the database and the catalog
// CSV in object storage. A missing catalog degrades the snapshot instead
// of failing it: question answering works without the recommendation
// catalog.
func Load(ctx context.Context, conn *pgxpool.Pool, s3Client *awss3.Client) (*Snapshot, error) {
	dbStorage := corpusstorage.NewCorpusDBStorageWithConnection(conn)

	embedded, err := dbStorage.LoadDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading corpus: %w", err)
	}

	vectors := make([][]float32, 0, len(embedded))
	docs := make([]index.Document, 0, len(embedded))
	for _, ed := range embedded {
		vectors = append(vectors, ed.Embedding)
		docs = append(docs, ed.Document)
	}

	ix := index.New(index.MetricInnerProduct)
	if err := ix.Load(vectors, docs); err != nil {
		return nil, fmt.Errorf("building index: %w", err)
	}

	nodes, edges, err := dbStorage.LoadGraph(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading graph: %w", err)
	}
	graph := kg.NewDirected()
	for _, n := range nodes {
		graph.AddNode(n)
	}
	for _, e := range edges {
		if err := graph.AddEdge(e); err != nil {
			return nil, fmt.Errorf("rebuilding graph: %w", err)
		}
	}

	snap := &Snapshot{
		Index:     ix,
		Keyword:   retrieval.NewKeywordRetriever(docs),
		Graph:     graph,
		Documents: len(docs),
	}

	catalogKey := util.GetEnvString("DATASET_CATALOG_KEY", "")
	if catalogKey != "" && s3Client != nil {
		content, err := storage.GetFile(ctx, s3Client, catalogKey)
		if err != nil {
			logger.Warn("Catalog unavailable, recommendations disabled", "key", catalogKey, "err", err)
		} else {
			catalog, err := dataset.ParseCatalog(content)
			if err != nil {
				logger.Warn("Catalog unparsable, recommendations disabled", "key", catalogKey, "err", err)
			} else {
				snap.Catalog = catalog
			}
		}
	}

	logger.Info("Serving snapshot loaded",
		"documents", snap.Documents,
		"graph_nodes", graph.NodeCount(),
		"graph_edges", graph.EdgeCount(),
		"catalog", snap.Catalog != nil,
	)
	return snap, nil
}
