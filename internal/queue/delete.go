package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/medassist-ai/medassist/backend/pkg/logger"
	corpusstorage "github.com/medassist-ai/medassist/backend/pkg/store/pgx"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ProcessDeleteMessage removes a dataset's documents from the corpus.
// Graph nodes stay: other datasets may reference the same entities and
// orphaned nodes are harmless to expansion.
func ProcessDeleteMessage(
	ctx context.Context,
	conn *pgxpool.Pool,
	msg string,
) error {
	data := new(QueueDeleteMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return err
	}
	if data.Dataset == "" {
		return fmt.Errorf("delete message missing dataset")
	}

	logger.Info("[Queue][Delete] Deleting dataset", "dataset", data.Dataset, "correlation_id", data.CorrelationID)

	dbStorage := corpusstorage.NewCorpusDBStorageWithConnection(conn)
	if err := dbStorage.DeleteDataset(ctx, data.Dataset); err != nil {
		return err
	}

	logger.Info("[Queue][Delete] Dataset deleted", "dataset", data.Dataset)
	return nil
}
