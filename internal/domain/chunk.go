package domain

// ChunkMetadata carries the identity and provenance of a journal chunk.
// `attributes` is a tag mapping: when callers upload a plain list of tags the
// normalizer converts it to {tag: true}.
type ChunkMetadata struct {
	ID             string         `json:"id"`
	SourceDocID    string         `json:"source_doc_id"`
	ChunkIndex     int            `json:"chunk_index"`
	SectionHeading string         `json:"section_heading"`
	DOI            string         `json:"doi"`
	Journal        string         `json:"journal"`
	PublishYear    int            `json:"publish_year"`
	UsageCount     int            `json:"usage_count"`
	Attributes     map[string]any `json:"attributes"`
	Link           string         `json:"link"`
}

// Chunk is the unit of ingestion and retrieval: metadata plus the literal
// passage text. Chunk IDs are caller-assigned; re-uploading an ID overwrites
// the stored record (upsert semantics delegated to the vector store).
type Chunk struct {
	ChunkMetadata
	Text string `json:"text"`
}

// SearchResult is a single similarity match with its metadata reconstructed
// from the stored payload. Constructed per query, never persisted.
type SearchResult struct {
	ID       string        `json:"id"`
	Score    float32       `json:"score"`
	Metadata ChunkMetadata `json:"metadata"`
	Text     string        `json:"text"`
}

// Citation is the provenance reference attached to a generated answer.
// Derived 1:1 from retrieval results, never parsed from model output.
type Citation struct {
	SourceDocID    string `json:"source_doc_id"`
	SectionHeading string `json:"section_heading"`
	Link           string `json:"link"`
}

// CitationForResult derives the citation for a search result.
func CitationForResult(r SearchResult) Citation {
	return Citation{
		SourceDocID:    r.Metadata.SourceDocID,
		SectionHeading: r.Metadata.SectionHeading,
		Link:           r.Metadata.Link,
	}
}
