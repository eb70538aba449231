// Package ingest validates and repairs raw uploaded chunk records into
// canonical domain.Chunk values.
package ingest

import (
	"encoding/json"
	"math"

	"github.com/cloo-solutions/citemeai/internal/domain"
)

// RawChunk is a loosely-typed chunk record as parsed from an uploaded JSON
// document.
type RawChunk map[string]any

// Normalize validates a batch of raw chunk records and produces canonical
// chunks in input order. Validation failure anywhere aborts the whole batch;
// the error names the offending record and field. Duplicate IDs pass through
// untouched, dedup belongs to the store's upsert.
func Normalize(records []RawChunk) ([]domain.Chunk, error) {
	chunks := make([]domain.Chunk, 0, len(records))
	for _, record := range records {
		chunk, err := normalizeOne(record)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

func normalizeOne(record RawChunk) (domain.Chunk, error) {
	id, _ := record["id"].(string)

	var chunk domain.Chunk
	var err error

	if chunk.ID, err = requireString(id, record, "id"); err != nil {
		return domain.Chunk{}, err
	}
	if chunk.SourceDocID, err = requireString(id, record, "source_doc_id"); err != nil {
		return domain.Chunk{}, err
	}
	if chunk.ChunkIndex, err = requireInt(id, record, "chunk_index"); err != nil {
		return domain.Chunk{}, err
	}
	if chunk.ChunkIndex < 0 {
		return domain.Chunk{}, domain.NewValidationError(id, "chunk_index", "must not be negative")
	}
	if chunk.SectionHeading, err = requireString(id, record, "section_heading"); err != nil {
		return domain.Chunk{}, err
	}
	if chunk.Journal, err = requireString(id, record, "journal"); err != nil {
		return domain.Chunk{}, err
	}
	if chunk.PublishYear, err = requireInt(id, record, "publish_year"); err != nil {
		return domain.Chunk{}, err
	}
	if chunk.UsageCount, err = requireInt(id, record, "usage_count"); err != nil {
		return domain.Chunk{}, err
	}
	if chunk.Link, err = requireString(id, record, "link"); err != nil {
		return domain.Chunk{}, err
	}
	if chunk.Text, err = requireString(id, record, "text"); err != nil {
		return domain.Chunk{}, err
	}

	// doi defaults to the literal "Unknown" when absent.
	if raw, ok := record["doi"]; ok {
		doi, ok := raw.(string)
		if !ok {
			return domain.Chunk{}, domain.NewValidationError(id, "doi", "must be a string")
		}
		chunk.DOI = doi
	} else {
		chunk.DOI = "Unknown"
	}

	if chunk.Attributes, err = normalizeAttributes(id, record["attributes"]); err != nil {
		return domain.Chunk{}, err
	}

	return chunk, nil
}

// normalizeAttributes repairs the attributes field. A list of strings carries
// tag semantics: each entry becomes a key mapped to true. A mapping passes
// through unchanged; absence yields an empty mapping.
func normalizeAttributes(chunkID string, raw any) (map[string]any, error) {
	switch v := raw.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	case []any:
		attrs := make(map[string]any, len(v))
		for _, item := range v {
			tag, ok := item.(string)
			if !ok {
				return nil, domain.NewValidationError(chunkID, "attributes", "list entries must be strings")
			}
			attrs[tag] = true
		}
		return attrs, nil
	case []string:
		attrs := make(map[string]any, len(v))
		for _, tag := range v {
			attrs[tag] = true
		}
		return attrs, nil
	default:
		return nil, domain.NewValidationError(chunkID, "attributes", "must be a mapping or a list of strings")
	}
}

func requireString(chunkID string, record RawChunk, field string) (string, error) {
	raw, ok := record[field]
	if !ok {
		return "", domain.NewValidationError(chunkID, field, "is required")
	}
	value, ok := raw.(string)
	if !ok {
		return "", domain.NewValidationError(chunkID, field, "must be a string")
	}
	return value, nil
}

func requireInt(chunkID string, record RawChunk, field string) (int, error) {
	raw, ok := record[field]
	if !ok {
		return 0, domain.NewValidationError(chunkID, field, "is required")
	}
	value, ok := asInt(raw)
	if !ok {
		return 0, domain.NewValidationError(chunkID, field, "must be an integer")
	}
	return value, nil
}

// asInt accepts the integer shapes JSON decoding can produce. Fractional
// floats are rejected.
func asInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
