package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/custodia-labs/paddock/internal/core/domain"
	"github.com/custodia-labs/paddock/internal/core/ports/driven"
	"github.com/custodia-labs/paddock/internal/core/ports/driving"
	"github.com/custodia-labs/paddock/internal/logger"
	"github.com/custodia-labs/paddock/internal/retry"
)

// Ensure EmbeddingGenerator implements the interface.
var _ driving.EmbeddingGenerator = (*EmbeddingGenerator)(nil)

// Metadata keys attached to vector index entries.
const (
	MetaKind     = "kind"
	MetaEntityID = "entity_id"
)

// EmbeddingGenerator renders rows as sentences and stores their vectors.
type EmbeddingGenerator struct {
	records    driven.RecordStore
	embeddings driven.EmbeddingStore
	embedder   driven.EmbeddingService
	index      driven.VectorIndex
	retry      *retry.Config
	log        *zap.Logger
	now        func() time.Time
}

// NewEmbeddingGenerator creates an embedding generator.
// The index is optional - when set, new vectors are appended to it as well.
func NewEmbeddingGenerator(
	records driven.RecordStore,
	embeddings driven.EmbeddingStore,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
) *EmbeddingGenerator {
	return &EmbeddingGenerator{
		records:    records,
		embeddings: embeddings,
		embedder:   embedder,
		index:      index,
		retry:      retry.DefaultConfig(),
		log:        logger.Named("embed"),
		now:        time.Now,
	}
}

// EmbedRows embeds rows one call at a time. A row that fails is logged and
// skipped. Returns the number of rows stored.
func (g *EmbeddingGenerator) EmbedRows(ctx context.Context, rows []domain.Embeddable) (int, error) {
	if g.embedder == nil {
		return 0, domain.ErrEmbeddingUnavailable
	}

	stored := 0
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return stored, err
		}
		if err := g.embedRow(ctx, row); err != nil {
			if ctx.Err() != nil {
				return stored, ctx.Err()
			}
			g.log.Warn("row not embedded",
				zap.Stringer("kind", row.Kind()), zap.String("id", row.EntityID()), zap.Error(err))
			continue
		}
		stored++
	}
	return stored, nil
}

func (g *EmbeddingGenerator) embedRow(ctx context.Context, row domain.Embeddable) error {
	text := row.Describe()
	vec, err := retry.DoWithResult(ctx, g.retry, func() ([]float32, error) {
		return g.embedder.Embed(ctx, text)
	})
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}
	if len(vec) == 0 {
		return fmt.Errorf("embed: %w: empty vector", domain.ErrMalformedVector)
	}

	rec := domain.EmbeddingRecord{
		EntityID:  row.EntityID(),
		Kind:      row.Kind(),
		Text:      text,
		Vector:    vec,
		UpdatedAt: g.now(),
	}
	if err := g.embeddings.SaveEmbedding(ctx, rec); err != nil {
		return fmt.Errorf("save embedding: %w", err)
	}

	if g.index != nil {
		if err := g.index.Add(ctx, []driven.VectorEntry{entryFor(rec)}); err != nil {
			g.log.Warn("index append failed", zap.String("id", rec.IndexKey()), zap.Error(err))
		}
	}
	return nil
}

// Regenerate re-reads every row of kinds and re-embeds all of them.
func (g *EmbeddingGenerator) Regenerate(ctx context.Context, kinds []domain.EntityKind) (*driving.EmbeddingReport, error) {
	if g.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if len(kinds) == 0 {
		kinds = domain.AllKinds()
	}

	report := &driving.EmbeddingReport{}
	logger.Section("Embeddings")
	for _, kind := range kinds {
		rows, err := g.loadRows(ctx, kind)
		if err != nil {
			return report, fmt.Errorf("load %s: %w", kind, err)
		}
		g.log.Info("regenerating embeddings", zap.Stringer("kind", kind), zap.Int("rows", len(rows)))

		n, err := g.EmbedRows(ctx, rows)
		report.Embedded += n
		report.Failed += len(rows) - n
		if err != nil {
			return report, err
		}
	}
	return report, nil
}

func (g *EmbeddingGenerator) loadRows(ctx context.Context, kind domain.EntityKind) ([]domain.Embeddable, error) {
	switch kind {
	case domain.KindCircuit:
		rows, err := g.records.ListCircuits(ctx)
		return toEmbeddables(rows), err
	case domain.KindConstructor:
		rows, err := g.records.ListConstructors(ctx, 0)
		return toEmbeddables(rows), err
	case domain.KindRace:
		rows, err := g.records.ListRaces(ctx, 0)
		return toEmbeddables(rows), err
	case domain.KindDriver:
		rows, err := g.records.ListDrivers(ctx, 0)
		return toEmbeddables(rows), err
	case domain.KindResult:
		rows, err := g.records.ListResults(ctx, 0)
		return toEmbeddables(rows), err
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedKind, kind)
}

// entryFor converts a stored embedding into a vector index entry.
func entryFor(rec domain.EmbeddingRecord) driven.VectorEntry {
	return driven.VectorEntry{
		ID:     rec.IndexKey(),
		Vector: rec.Vector,
		Text:   rec.Text,
		Metadata: map[string]string{
			MetaKind:     string(rec.Kind),
			MetaEntityID: rec.EntityID,
		},
	}
}
