// Package pgx implements store.CorpusStorage on PostgreSQL with pgvector
// for the embedding columns.
package pgx

import (
	"context"
	"sync"

	"github.com/medassist-ai/medassist/backend/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	Begin(ctx context.Context) (pgxv5.Tx, error)
}

// CorpusDBStorage persists the corpus and the knowledge graph in
// PostgreSQL. Writes are serialized with a mutex; reads go straight to
// the pool.
type CorpusDBStorage struct {
	conn   pgxIConn
	dbLock sync.Mutex
}

// NewCorpusDBStorageWithConnection creates storage over an existing
// connection or pool.
func NewCorpusDBStorageWithConnection(conn pgxIConn) *CorpusDBStorage {
	return &CorpusDBStorage{conn: conn}
}

var _ store.CorpusStorage = (*CorpusDBStorage)(nil)
