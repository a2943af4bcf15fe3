package queue

// QueueIngestMsg requests ingestion of one dataset CSV from object
// storage into the corpus and the knowledge graph.
type QueueIngestMsg struct {
	Message       string `json:"message"`
	Dataset       string `json:"dataset"`
	FileKey       string `json:"file_key"`
	CorrelationID string `json:"correlation_id"`
}

// QueueDeleteMsg requests removal of one dataset from the corpus.
type QueueDeleteMsg struct {
	Message       string `json:"message"`
	Dataset       string `json:"dataset"`
	CorrelationID string `json:"correlation_id"`
}
