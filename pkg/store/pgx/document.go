package pgx

import (
	"context"
	"fmt"

	"github.com/medassist-ai/medassist/backend/internal/util"
	"github.com/medassist-ai/medassist/backend/pkg/index"
	"github.com/medassist-ai/medassist/backend/pkg/logger"
	"github.com/medassist-ai/medassist/backend/pkg/store"

	"github.com/pgvector/pgvector-go"
)

const documentChunk = 250

// SaveDocuments replaces the named dataset's documents in one
// transaction per chunk. Document text is sanitized before insert so a
// stray NUL byte in a source CSV cannot poison the batch.
func (s *CorpusDBStorage) SaveDocuments(ctx context.Context, dataset string, docs []store.EmbeddedDocument) error {
	if len(docs) == 0 {
		return nil
	}

	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	if _, err := s.conn.Exec(ctx, `DELETE FROM documents WHERE dataset = $1`, dataset); err != nil {
		return fmt.Errorf("clearing dataset %q: %w", dataset, err)
	}

	return store.ChunkRange(len(docs), documentChunk, func(start, end int) error {
		logger.Debug("[Store][SaveDocuments] Saving chunk", "dataset", dataset, "documents", end-start)

		tx, err := s.conn.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		for _, doc := range docs[start:end] {
			_, err := tx.Exec(ctx, `
				INSERT INTO documents (public_id, dataset, source, content, embedding)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (public_id) DO UPDATE
				SET dataset = EXCLUDED.dataset,
				    source = EXCLUDED.source,
				    content = EXCLUDED.content,
				    embedding = EXCLUDED.embedding`,
				doc.Document.ID,
				dataset,
				doc.Document.Source,
				util.SanitizePostgresText(doc.Document.Text),
				pgvector.NewVector(doc.Embedding),
			)
			if err != nil {
				return fmt.Errorf("inserting document %q: %w", doc.Document.ID, err)
			}
		}

		return tx.Commit(ctx)
	})
}

// LoadDocuments returns every stored document with its embedding, in
// insertion order.
func (s *CorpusDBStorage) LoadDocuments(ctx context.Context) ([]store.EmbeddedDocument, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT public_id, source, content, embedding
		FROM documents
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("loading documents: %w", err)
	}
	defer rows.Close()

	var docs []store.EmbeddedDocument
	for rows.Next() {
		var (
			doc index.Document
			vec pgvector.Vector
		)
		if err := rows.Scan(&doc.ID, &doc.Source, &doc.Text, &vec); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, store.EmbeddedDocument{Document: doc, Embedding: vec.Slice()})
	}
	return docs, rows.Err()
}

// DeleteDataset removes all documents belonging to the named dataset.
func (s *CorpusDBStorage) DeleteDataset(ctx context.Context, dataset string) error {
	s.dbLock.Lock()
	defer s.dbLock.Unlock()

	_, err := s.conn.Exec(ctx, `DELETE FROM documents WHERE dataset = $1`, dataset)
	if err != nil {
		return fmt.Errorf("deleting dataset %q: %w", dataset, err)
	}
	return nil
}

// ListDatasets returns each ingested dataset with its document count.
func (s *CorpusDBStorage) ListDatasets(ctx context.Context) ([]store.DatasetInfo, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT dataset, COUNT(*)
		FROM documents
		GROUP BY dataset
		ORDER BY dataset`)
	if err != nil {
		return nil, fmt.Errorf("listing datasets: %w", err)
	}
	defer rows.Close()

	var infos []store.DatasetInfo
	for rows.Next() {
		var info store.DatasetInfo
		if err := rows.Scan(&info.Name, &info.DocumentCount); err != nil {
			return nil, fmt.Errorf("scanning dataset info: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}
