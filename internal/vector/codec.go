package vector

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/cloo-solutions/citemeai/internal/domain"
)

// attributeKeysField is the payload field carrying the key set of the chunk's
// attributes mapping. Vector store payloads only hold strings, numbers,
// booleans and string lists, so the mapping is stored as its ordered key
// list. The attribute values are discarded: this is a deliberate lossy
// transform, and DecodeMatch restores each key with value true.
const attributeKeysField = "attribute_keys"

// textField holds the chunk text verbatim; the vector store is the only
// persistence layer, so the text must come back with every match.
const textField = "text"

// EncodeRecord flattens a chunk and its embedding into a storable record.
// Every scalar metadata field is copied verbatim; attributes collapse to a
// sorted key list under attribute_keys.
func EncodeRecord(chunk domain.Chunk, embedding []float32) Record {
	keys := make([]string, 0, len(chunk.Attributes))
	for key := range chunk.Attributes {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	payload := map[string]any{
		"id":               chunk.ID,
		"source_doc_id":    chunk.SourceDocID,
		"chunk_index":      chunk.ChunkIndex,
		"section_heading":  chunk.SectionHeading,
		"doi":              chunk.DOI,
		"journal":          chunk.Journal,
		"publish_year":     chunk.PublishYear,
		"usage_count":      chunk.UsageCount,
		"link":             chunk.Link,
		attributeKeysField: keys,
		textField:          chunk.Text,
	}

	return Record{
		ID:        chunk.ID,
		Embedding: embedding,
		Payload:   payload,
	}
}

// DecodeMatch reconstructs a search result from a raw query match. Decoding
// is total over any payload shape: missing numeric fields default to 0,
// missing attributes to an empty mapping, and other missing fields to the
// empty string.
func DecodeMatch(match Match) domain.SearchResult {
	payload := match.Payload

	return domain.SearchResult{
		ID:    match.ID,
		Score: match.Score,
		Text:  payloadString(payload, textField),
		Metadata: domain.ChunkMetadata{
			ID:             payloadString(payload, "id"),
			SourceDocID:    payloadString(payload, "source_doc_id"),
			ChunkIndex:     payloadInt(payload, "chunk_index"),
			SectionHeading: payloadString(payload, "section_heading"),
			DOI:            payloadString(payload, "doi"),
			Journal:        payloadString(payload, "journal"),
			PublishYear:    payloadInt(payload, "publish_year"),
			UsageCount:     payloadInt(payload, "usage_count"),
			Attributes:     payloadAttributes(payload),
			Link:           payloadString(payload, "link"),
		},
	}
}

func payloadString(payload map[string]any, field string) string {
	value, _ := payload[field].(string)
	return value
}

func payloadInt(payload map[string]any, field string) int {
	switch v := payload[field].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(math.Round(v))
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0
		}
		return int(n)
	default:
		return 0
	}
}

// payloadAttributes rebuilds the attributes mapping from the stored key
// list. The original values are not recoverable; every key comes back true.
func payloadAttributes(payload map[string]any) map[string]any {
	attrs := map[string]any{}
	switch keys := payload[attributeKeysField].(type) {
	case []string:
		for _, key := range keys {
			attrs[key] = true
		}
	case []any:
		for _, raw := range keys {
			if key, ok := raw.(string); ok {
				attrs[key] = true
			}
		}
	}
	return attrs
}
