// Package vector defines the storable record shape for embedded chunks and
// the codec between domain chunks and vector store payloads.
package vector

import "context"

// Record is the storable form of an embedded chunk: the caller-assigned id,
// the embedding, and a flattened scalar-only payload.
type Record struct {
	ID        string
	Embedding []float32
	Payload   map[string]any
}

// Match is a raw nearest-neighbor match returned by a store query, ordered by
// descending similarity.
type Match struct {
	ID      string
	Score   float32
	Payload map[string]any
}

// Stats describes the state of the backing index.
type Stats struct {
	TotalVectorCount int `json:"total_vector_count"`
}

// Store is the nearest-neighbor persistence backend. Upsert overwrites
// records by id (last write wins); Query returns up to topK matches with
// higher scores meaning more similar, regardless of backend metric.
type Store interface {
	Upsert(ctx context.Context, records []Record) error
	Query(ctx context.Context, embedding []float32, topK int, includeMetadata bool) ([]Match, error)
	Stats(ctx context.Context) (*Stats, error)
}
