// Package pinecone implements the vector store on a Pinecone serverless
// index.
package pinecone

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pinecone-io/go-pinecone/v2/pinecone"

	"github.com/cloo-solutions/citemeai/internal/vector"
)

// Config holds the settings needed to reach (or create) the index.
type Config struct {
	APIKey    string
	IndexName string
	Region    string
	Namespace string
	// Dimension is used only when the index has to be created.
	Dimension int32
}

// Store implements vector.Store against a Pinecone index connection.
// Pinecone scores are cosine similarities, so higher already means more
// similar and no score translation is needed.
type Store struct {
	index *pinecone.IndexConnection
}

// New wraps an existing index connection.
func New(index *pinecone.IndexConnection) *Store {
	return &Store{index: index}
}

// Connect creates the Pinecone client, ensures the index exists (creating a
// cosine serverless index when it does not), and opens a connection to it.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	client, err := pinecone.NewClient(pinecone.NewClientParams{
		ApiKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pinecone client: %w", err)
	}

	idx, err := client.DescribeIndex(ctx, cfg.IndexName)
	if err != nil {
		_, err = client.CreateServerlessIndex(ctx, &pinecone.CreateServerlessIndexRequest{
			Name:      cfg.IndexName,
			Dimension: cfg.Dimension,
			Metric:    pinecone.Cosine,
			Cloud:     pinecone.Aws,
			Region:    cfg.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create index %q: %w", cfg.IndexName, err)
		}
		idx, err = client.DescribeIndex(ctx, cfg.IndexName)
		if err != nil {
			return nil, fmt.Errorf("failed to describe index %q: %w", cfg.IndexName, err)
		}
	}

	conn, err := client.Index(pinecone.NewIndexConnParams{
		Host:      idx.Host,
		Namespace: cfg.Namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to index %q: %w", cfg.IndexName, err)
	}

	return New(conn), nil
}

// Upsert stores or overwrites records by id.
func (s *Store) Upsert(ctx context.Context, records []vector.Record) error {
	if len(records) == 0 {
		return nil
	}

	vectors := make([]*pinecone.Vector, len(records))
	for i, record := range records {
		meta, err := payloadToMetadata(record.Payload)
		if err != nil {
			return fmt.Errorf("failed to encode payload for %q: %w", record.ID, err)
		}
		vectors[i] = &pinecone.Vector{
			Id:       record.ID,
			Values:   record.Embedding,
			Metadata: meta,
		}
	}

	if _, err := s.index.UpsertVectors(ctx, vectors); err != nil {
		return fmt.Errorf("failed to upsert vectors: %w", err)
	}
	return nil
}

// Query returns up to topK nearest neighbors in descending similarity order.
func (s *Store) Query(ctx context.Context, embedding []float32, topK int, includeMetadata bool) ([]vector.Match, error) {
	resp, err := s.index.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          embedding,
		TopK:            uint32(topK),
		IncludeMetadata: includeMetadata,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query vectors: %w", err)
	}

	matches := make([]vector.Match, len(resp.Matches))
	for i, match := range resp.Matches {
		payload, err := metadataToPayload(match.Vector.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to decode metadata for %q: %w", match.Vector.Id, err)
		}
		matches[i] = vector.Match{
			ID:      match.Vector.Id,
			Score:   match.Score,
			Payload: payload,
		}
	}
	return matches, nil
}

// Stats reports the index vector count.
func (s *Store) Stats(ctx context.Context) (*vector.Stats, error) {
	resp, err := s.index.DescribeIndexStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to describe index stats: %w", err)
	}
	return &vector.Stats{TotalVectorCount: int(resp.TotalVectorCount)}, nil
}

// payloadToMetadata converts a payload mapping into Pinecone metadata via a
// JSON round trip; the metadata struct accepts JSON object shapes directly.
func payloadToMetadata(payload map[string]any) (*pinecone.Metadata, error) {
	if payload == nil {
		return nil, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var meta pinecone.Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func metadataToPayload(meta *pinecone.Metadata) (map[string]any, error) {
	if meta == nil {
		return map[string]any{}, nil
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}
	payload := map[string]any{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}
