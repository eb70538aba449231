// Package pgvector implements the vector store on Postgres with the pgvector
// extension.
package pgvector

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvec "github.com/pgvector/pgvector-go"

	"github.com/cloo-solutions/citemeai/internal/vector"
)

type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements vector.Store on a chunk_vectors table. The `<=>` operator
// yields cosine distance (lower is closer), so the query converts it to a
// similarity via 1 - distance to keep the higher-is-better score contract.
type Store struct {
	db dbtx
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{db: pool}
}

func NewStoreWithTx(tx pgx.Tx) *Store {
	return &Store{db: tx}
}

// Upsert inserts or overwrites records by id.
func (s *Store) Upsert(ctx context.Context, records []vector.Record) error {
	for _, record := range records {
		_, err := s.db.Exec(ctx,
			`INSERT INTO chunk_vectors (id, embedding, payload, updated_at)
			 VALUES ($1, $2, $3, now())
			 ON CONFLICT (id) DO UPDATE
			 SET embedding = EXCLUDED.embedding,
			     payload = EXCLUDED.payload,
			     updated_at = now()`,
			record.ID,
			pgvec.NewVector(record.Embedding),
			record.Payload,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert vector %q: %w", record.ID, err)
		}
	}
	return nil
}

// Query returns up to topK matches ordered by descending cosine similarity.
func (s *Store) Query(ctx context.Context, embedding []float32, topK int, includeMetadata bool) ([]vector.Match, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, payload, 1 - (embedding <=> $1) AS score
		 FROM chunk_vectors
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		pgvec.NewVector(embedding),
		topK,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query vectors: %w", err)
	}
	defer rows.Close()

	var matches []vector.Match
	for rows.Next() {
		var (
			id      string
			raw     []byte
			score   float64
			payload map[string]any
		)
		if err := rows.Scan(&id, &raw, &score); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		if includeMetadata && len(raw) > 0 {
			if err := json.Unmarshal(raw, &payload); err != nil {
				return nil, fmt.Errorf("failed to decode payload for %q: %w", id, err)
			}
		}
		matches = append(matches, vector.Match{
			ID:      id,
			Score:   float32(score),
			Payload: payload,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read matches: %w", err)
	}
	return matches, nil
}

// Stats reports how many vectors the table holds.
func (s *Store) Stats(ctx context.Context) (*vector.Stats, error) {
	var count int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM chunk_vectors`).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to count vectors: %w", err)
	}
	return &vector.Stats{TotalVectorCount: count}, nil
}
