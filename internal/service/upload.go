package service

import (
	"context"
	"fmt"

	"github.com/cloo-solutions/citemeai/internal/domain"
	"github.com/cloo-solutions/citemeai/internal/telemetry"
	"github.com/cloo-solutions/citemeai/internal/vector"
)

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// VectorStore defines the store operations the services depend on
type VectorStore interface {
	Upsert(ctx context.Context, records []vector.Record) error
	Query(ctx context.Context, embedding []float32, topK int, includeMetadata bool) ([]vector.Match, error)
	Stats(ctx context.Context) (*vector.Stats, error)
}

// upsertBatchSize is the per-call record limit for batched upserts; the
// backend rejects larger batches.
const upsertBatchSize = 100

// UploadService embeds normalized chunks and stores them in the vector
// index. Chunks are embedded one at a time and upserted in fixed-size
// batches submitted sequentially; a failure mid-sequence leaves earlier
// batches stored (upload is not atomic across the whole set).
type UploadService struct {
	embedding EmbeddingClient
	store     VectorStore
}

// NewUploadService creates a new UploadService instance
func NewUploadService(embedding EmbeddingClient, store VectorStore) *UploadService {
	return &UploadService{embedding: embedding, store: store}
}

// Upload embeds and stores the given chunks, returning how many were stored.
func (s *UploadService) Upload(ctx context.Context, chunks []domain.Chunk) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "UploadService.Upload", telemetry.SpanAttributes{
		Operation: "upload",
	})
	defer span.End()

	if s.embedding == nil {
		return 0, domain.ErrEmbeddingNotConfigured
	}
	if s.store == nil {
		return 0, domain.ErrVectorStoreUnavailable
	}

	records := make([]vector.Record, 0, len(chunks))
	for _, chunk := range chunks {
		embedding, err := s.embedding.GenerateEmbedding(ctx, chunk.Text)
		if err != nil {
			span.SetError(err)
			return 0, fmt.Errorf("failed to embed chunk %q: %w", chunk.ID, err)
		}
		records = append(records, vector.EncodeRecord(chunk, embedding))
	}

	for start := 0; start < len(records); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(records) {
			end = len(records)
		}
		if err := s.store.Upsert(ctx, records[start:end]); err != nil {
			span.SetError(err)
			return 0, domain.NewDomainErrorWithCause(domain.ErrCodeUnavailable, "failed to store vectors", err)
		}
	}

	return len(records), nil
}
