package driven

import "context"

// VectorIndex stores (text, vector, metadata) entries and answers nearest
// neighbour queries. It is a derived cache that can always be rebuilt from
// the EmbeddingStore.
type VectorIndex interface {
	// Add inserts or replaces entries by ID.
	Add(ctx context.Context, entries []VectorEntry) error

	// Search finds the k nearest entries to the query vector, best first.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Reset removes every entry.
	Reset(ctx context.Context) error

	// Count returns the number of entries.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

// VectorEntry is one indexed item.
type VectorEntry struct {
	// ID is unique within the index.
	ID string

	Vector   []float32
	Text     string
	Metadata map[string]string
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	ID       string
	Text     string
	Metadata map[string]string

	// Similarity is the cosine similarity score (-1..1, higher is closer).
	Similarity float64
}
