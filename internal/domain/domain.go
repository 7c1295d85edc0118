package domain

import "context"

// Document is a normalized corpus entry with provenance metadata.
// Metadata carries "source" ("posts" or "authorities"), the authority
// "type" discriminator where applicable, and all original record fields.
type Document struct {
	Text     string
	Metadata map[string]any
}

// Chunk is a bounded-length slice of a document, the unit of embedding
// and retrieval.
type Chunk struct {
	ID       string
	Text     string
	Metadata map[string]any
}

// SearchResult is a retrieved chunk with its cosine similarity score.
type SearchResult struct {
	Chunk Chunk
	Score float32
}

// Turn roles.
const (
	RoleHuman     = "human"
	RoleAssistant = "assistant"
)

// Turn is a single utterance in a session transcript.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Embedder converts batches of texts into fixed-dimensionality vectors,
// one per input, order-preserving.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// VectorStore persists chunk vectors and supports similarity search.
// Init is idempotent: an existing index with the same name is reused.
type VectorStore interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, chunks []Chunk, vectors [][]float32) error
	Query(ctx context.Context, vector []float32, topK int, scoreThreshold float32) ([]SearchResult, error)
}

// CompletionModel produces one completion for a system prompt plus an
// ordered list of conversation messages.
type CompletionModel interface {
	Complete(ctx context.Context, system string, messages []Turn) (string, error)
}

// MemoryStore holds per-session conversation transcripts, created lazily
// on first append.
type MemoryStore interface {
	History(ctx context.Context, sessionID string) ([]Turn, error)
	Append(ctx context.Context, sessionID string, turns ...Turn) error
}
