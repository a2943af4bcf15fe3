package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/medassist-ai/medassist/backend/internal/storage"
	"github.com/medassist-ai/medassist/backend/pkg/ai"
	"github.com/medassist-ai/medassist/backend/pkg/dataset"
	"github.com/medassist-ai/medassist/backend/pkg/index"
	"github.com/medassist-ai/medassist/backend/pkg/logger"
	"github.com/medassist-ai/medassist/backend/pkg/store"
	corpusstorage "github.com/medassist-ai/medassist/backend/pkg/store/pgx"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

// ProcessIngestMessage handles one dataset ingestion: the CSV is fetched
// from object storage, parsed into the drug catalog, rendered into
// passages and graph relations, embedded and persisted. Embeddings are
// normalized so the serving index can score by inner product.
func ProcessIngestMessage(
	ctx context.Context,
	s3Client *awss3.Client,
	aiClient ai.MedicalAIClient,
	conn *pgxpool.Pool,
	msg string,
) error {
	data := new(QueueIngestMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return err
	}
	if data.Dataset == "" || data.FileKey == "" {
		return fmt.Errorf("ingest message missing dataset or file_key")
	}

	logger.Info("[Queue][Ingest] Processing dataset", "dataset", data.Dataset, "file_key", data.FileKey, "correlation_id", data.CorrelationID)

	content, err := storage.GetFile(ctx, s3Client, data.FileKey)
	if err != nil {
		return err
	}

	catalog, err := dataset.ParseCatalog(content)
	if err != nil {
		return fmt.Errorf("parsing dataset %q: %w", data.Dataset, err)
	}

	docs := dataset.BuildDocuments(catalog, data.Dataset)
	logger.Info("[Queue][Ingest] Generating embeddings", "documents", len(docs))

	embedded, err := embedDocuments(ctx, aiClient, docs)
	if err != nil {
		return err
	}

	dbStorage := corpusstorage.NewCorpusDBStorageWithConnection(conn)
	if err := dbStorage.SaveDocuments(ctx, data.Dataset, embedded); err != nil {
		return err
	}

	nodes, edges := dataset.BuildGraph(catalog)
	logger.Info("[Queue][Ingest] Saving knowledge graph", "nodes", len(nodes), "edges", len(edges))
	if err := dbStorage.SaveGraph(ctx, nodes, edges); err != nil {
		return err
	}

	logger.Info("[Queue][Ingest] Dataset ingested", "dataset", data.Dataset, "documents", len(embedded))
	return nil
}

// embedDocuments embeds passages concurrently, bounded by CPU count.
// Vectors come back unit-length.
func embedDocuments(ctx context.Context, aiClient ai.EmbeddingClient, docs []index.Document) ([]store.EmbeddedDocument, error) {
	embedded := make([]store.EmbeddedDocument, len(docs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, doc := range docs {
		g.Go(func() error {
			vec, err := aiClient.GenerateEmbedding(gCtx, []byte(doc.Text))
			if err != nil {
				return fmt.Errorf("embedding document %q: %w", doc.ID, err)
			}
			embedded[i] = store.EmbeddedDocument{
				Document:  doc,
				Embedding: index.Normalize(vec),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return embedded, nil
}
