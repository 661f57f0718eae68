// Package vector defines the embedding and vector index contracts shared by
// the ingestion and retrieval pipelines.
package vector

import "context"

// InputType tags an embedding call with its intent. Asymmetric embedding
// models produce different representations for stored passages and queries,
// so both call sites must declare which side they are.
type InputType string

const (
	InputTypePassage InputType = "passage"
	InputTypeQuery   InputType = "query"
)

// Metadata is the denormalized payload stored next to each embedding. OwnerID
// and ConversationID are the mandatory retrieval filter fields.
type Metadata struct {
	ChunkText      string `json:"chunk_text"`
	FileName       string `json:"file_name"`
	OwnerID        string `json:"owner_id"`
	ConversationID string `json:"conversation_id"`
	ChunkIndex     int    `json:"chunk_index"`
}

// Record is a single (vector, metadata) pair keyed by a unique ID.
type Record struct {
	ID        string
	Embedding []float32
	Metadata  Metadata
}

// Hit is a search result ordered by descending similarity score.
type Hit struct {
	ID       string
	Score    float32
	Metadata Metadata
}

// Filter restricts a search to one owner and one conversation. Both fields
// are required: an unscoped search would leak private document content.
type Filter struct {
	OwnerID        string
	ConversationID string
}

// Embedder converts text into fixed-dimensionality vectors.
type Embedder interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string, inputType InputType) ([][]float32, error)
	// Dimension reports the configured vector dimensionality D.
	Dimension() int
}

// Index stores vector records and serves filtered nearest-neighbor search.
// Upsert is idempotent by record ID with last-write-wins semantics; failures
// from either operation must be returned, never converted to empty results.
type Index interface {
	EnsureReady(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, records []Record) error
	Search(ctx context.Context, queryVector []float32, topK int, filter Filter) ([]Hit, error)
}
