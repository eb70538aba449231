package service

import (
	"context"
	"fmt"

	"github.com/cloo-solutions/citemeai/internal/domain"
	"github.com/cloo-solutions/citemeai/internal/telemetry"
	"github.com/cloo-solutions/citemeai/internal/vector"
)

const (
	// DefaultTopK is the number of candidates requested when the caller
	// leaves k unset.
	DefaultTopK = 10
	// DefaultMinScore is the similarity threshold applied when the caller
	// leaves min_score unset.
	DefaultMinScore float32 = 0.25
)

// SearchInput carries the similarity search parameters. TopK bounds the
// candidates requested from the store, not the result count after filtering.
type SearchInput struct {
	Query    string
	TopK     int
	MinScore float32
}

// SearchService performs score-thresholded semantic search over the vector
// store.
type SearchService struct {
	embedding EmbeddingClient
	store     VectorStore
}

// NewSearchService creates a new SearchService instance
func NewSearchService(embedding EmbeddingClient, store VectorStore) *SearchService {
	return &SearchService{embedding: embedding, store: store}
}

// Search embeds the query, asks the store for the top-k nearest neighbors,
// and returns the decoded matches whose score clears the threshold, in the
// store's descending-similarity order. An empty index short-circuits to an
// empty result without querying; an uninitialized store is an error.
func (s *SearchService) Search(ctx context.Context, input SearchInput) ([]domain.SearchResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "SearchService.Search", telemetry.SpanAttributes{
		Query:     input.Query,
		Operation: "search",
	})
	defer span.End()

	if s.embedding == nil {
		return nil, domain.ErrEmbeddingNotConfigured
	}
	if s.store == nil {
		return nil, domain.ErrVectorStoreUnavailable
	}

	topK := input.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	embedding, err := s.embedding.GenerateEmbedding(ctx, input.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	// Some backends misbehave when queried with zero vectors stored; an
	// empty index is a healthy state, not an error.
	stats, err := s.store.Stats(ctx)
	if err != nil {
		span.SetError(err)
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUnavailable, "failed to read index stats", err)
	}
	if stats.TotalVectorCount == 0 {
		return []domain.SearchResult{}, nil
	}

	matches, err := s.store.Query(ctx, embedding, topK, true)
	if err != nil {
		span.SetError(err)
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUnavailable, "failed to query vectors", err)
	}

	results := make([]domain.SearchResult, 0, len(matches))
	for _, match := range matches {
		if match.Score < input.MinScore {
			continue
		}
		results = append(results, vector.DecodeMatch(match))
	}
	return results, nil
}
