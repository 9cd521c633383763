package domain

// Metadata is an opaque caller-supplied payload attached to indexed chunks.
// The retrieval engine never interprets it and returns it unchanged.
type Metadata map[string]any

// Clone returns a shallow copy of m, or nil when m is nil.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Chunk is a bounded unit of text stored in the vector index.
type Chunk struct {
	// ID is generated at insertion time and never reused.
	ID string

	// Content is the non-blank chunk text.
	Content string

	// Embedding is the vector for Content. All chunks in an index share its length.
	Embedding []float32

	// Metadata is passed through from ingestion.
	Metadata Metadata
}

// ScoredChunk is a chunk paired with its similarity to a query.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// SearchResult is a retrieved chunk as exposed to callers.
type SearchResult struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata,omitempty"`
}

// IngestResult reports what happened to one document during ingestion.
type IngestResult struct {
	// Chunks is the number of chunks produced by the chunker.
	Chunks int `json:"chunks"`

	// Indexed is the number of chunks embedded and appended to the index.
	Indexed int `json:"indexed"`

	// Skipped is the number of chunks dropped because embedding failed.
	Skipped int `json:"skipped"`
}

// Partial reports whether some chunks of the document were not indexed.
func (r IngestResult) Partial() bool {
	return r.Skipped > 0
}
