package driving

import (
	"context"

	"github.com/custodia-labs/paddock/internal/core/domain"
)

// EmbeddingGenerator turns stored rows into sentences and vectors.
type EmbeddingGenerator interface {
	// EmbedRows embeds each row with one call per row and stores the result
	// on the row and in the embeddings table. Returns how many were stored.
	EmbedRows(ctx context.Context, rows []domain.Embeddable) (int, error)

	// Regenerate re-reads every row of the given kinds (all kinds when empty)
	// and re-embeds them.
	Regenerate(ctx context.Context, kinds []domain.EntityKind) (*EmbeddingReport, error)
}

// EmbeddingReport summarises a regeneration.
type EmbeddingReport struct {
	Embedded int
	Failed   int
}
