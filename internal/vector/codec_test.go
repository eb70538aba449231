package vector

import (
	"testing"

	"github.com/cloo-solutions/citemeai/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleChunk() domain.Chunk {
	return domain.Chunk{
		ChunkMetadata: domain.ChunkMetadata{
			ID:             "chunk-1",
			SourceDocID:    "doc-1",
			ChunkIndex:     2,
			SectionHeading: "Methods",
			DOI:            "10.1000/xyz",
			Journal:        "Journal of Agronomy",
			PublishYear:    2021,
			UsageCount:     5,
			Attributes:     map[string]any{"soil": true, "legume": true},
			Link:           "https://example.org/doc-1",
		},
		Text: "Legumes fix nitrogen in the soil.",
	}
}

func TestEncodeRecord(t *testing.T) {
	embedding := []float32{0.1, 0.2, 0.3}
	record := EncodeRecord(sampleChunk(), embedding)

	assert.Equal(t, "chunk-1", record.ID)
	assert.Equal(t, embedding, record.Embedding)
	assert.Equal(t, "doc-1", record.Payload["source_doc_id"])
	assert.Equal(t, 2, record.Payload["chunk_index"])
	assert.Equal(t, "Legumes fix nitrogen in the soil.", record.Payload["text"])

	// The attributes mapping collapses to its sorted key list.
	assert.Equal(t, []string{"legume", "soil"}, record.Payload["attribute_keys"])
	assert.NotContains(t, record.Payload, "attributes")
}

func TestEncodeRecord_NilAttributes(t *testing.T) {
	chunk := sampleChunk()
	chunk.Attributes = nil

	record := EncodeRecord(chunk, []float32{0.1})
	assert.Equal(t, []string{}, record.Payload["attribute_keys"])
}

func TestDecodeMatch_RoundTrip(t *testing.T) {
	record := EncodeRecord(sampleChunk(), []float32{0.1, 0.2})
	result := DecodeMatch(Match{ID: record.ID, Score: 0.92, Payload: record.Payload})

	assert.Equal(t, "chunk-1", result.ID)
	assert.Equal(t, float32(0.92), result.Score)
	assert.Equal(t, "Legumes fix nitrogen in the soil.", result.Text)
	assert.Equal(t, "doc-1", result.Metadata.SourceDocID)
	assert.Equal(t, 2, result.Metadata.ChunkIndex)
	assert.Equal(t, 2021, result.Metadata.PublishYear)

	// Attribute values are not recoverable; every key comes back true.
	assert.Equal(t, map[string]any{"legume": true, "soil": true}, result.Metadata.Attributes)
}

func TestDecodeMatch_JSONShapes(t *testing.T) {
	// A payload that has been through a JSON round trip carries float64
	// numbers and []any lists.
	payload := map[string]any{
		"id":             "chunk-1",
		"source_doc_id":  "doc-1",
		"chunk_index":    float64(2),
		"publish_year":   float64(2021),
		"usage_count":    float64(5),
		"attribute_keys": []any{"legume", "soil"},
		"text":           "body",
	}

	result := DecodeMatch(Match{ID: "chunk-1", Score: 0.5, Payload: payload})
	assert.Equal(t, 2, result.Metadata.ChunkIndex)
	assert.Equal(t, 2021, result.Metadata.PublishYear)
	assert.Equal(t, 5, result.Metadata.UsageCount)
	assert.Equal(t, map[string]any{"legume": true, "soil": true}, result.Metadata.Attributes)
}

func TestDecodeMatch_EmptyPayload(t *testing.T) {
	result := DecodeMatch(Match{ID: "chunk-1", Score: 0.3, Payload: map[string]any{}})

	assert.Equal(t, "chunk-1", result.ID)
	assert.Equal(t, "", result.Text)
	assert.Equal(t, 0, result.Metadata.ChunkIndex)
	assert.Equal(t, 0, result.Metadata.PublishYear)
	require.NotNil(t, result.Metadata.Attributes)
	assert.Empty(t, result.Metadata.Attributes)
}

func TestDecodeMatch_NilPayload(t *testing.T) {
	result := DecodeMatch(Match{ID: "chunk-1", Score: 0.3})
	assert.Equal(t, "", result.Metadata.SourceDocID)
	assert.Empty(t, result.Metadata.Attributes)
}
