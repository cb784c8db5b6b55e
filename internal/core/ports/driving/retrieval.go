package driving

import (
	"context"

	"github.com/custodia-labs/paddock/internal/core/domain"
)

// RetrievalService loads the vector index and answers similarity queries.
type RetrievalService interface {
	// Load hydrates the index from stored embeddings. With reload set the
	// index is cleared first; otherwise a non-empty persistent index is reused.
	Load(ctx context.Context, reload bool) (*LoadReport, error)

	// Search embeds the query and returns the k closest records.
	Search(ctx context.Context, query string, k int) ([]domain.SearchHit, error)
}

// LoadReport summarises an index load.
type LoadReport struct {
	Loaded  int
	Skipped int

	// Reused is set when a persistent index already held entries.
	Reused bool
}
