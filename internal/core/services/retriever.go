package services

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/custodia-labs/paddock/internal/core/domain"
	"github.com/custodia-labs/paddock/internal/core/ports/driven"
	"github.com/custodia-labs/paddock/internal/core/ports/driving"
	"github.com/custodia-labs/paddock/internal/logger"
	"github.com/custodia-labs/paddock/internal/retry"
)

// Ensure Retriever implements the interface.
var _ driving.RetrievalService = (*Retriever)(nil)

const loadBatchSize = 256

// RetrieverConfig tunes the retriever.
type RetrieverConfig struct {
	// CacheSize bounds the query embedding cache. Zero disables it.
	CacheSize int

	// Persistent marks an index that survives restarts. A persistent index
	// that already holds entries is reused unless a reload is requested.
	Persistent bool
}

// Retriever hydrates the vector index and runs similarity queries.
type Retriever struct {
	embeddings driven.EmbeddingStore
	embedder   driven.EmbeddingService
	index      driven.VectorIndex
	cfg        RetrieverConfig
	cache      *lru.Cache[string, []float32]
	retry      *retry.Config
	log        *zap.Logger
}

// NewRetriever creates a retriever.
func NewRetriever(
	embeddings driven.EmbeddingStore,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	cfg RetrieverConfig,
) *Retriever {
	r := &Retriever{
		embeddings: embeddings,
		embedder:   embedder,
		index:      index,
		cfg:        cfg,
		retry:      retry.DefaultConfig(),
		log:        logger.Named("retrieval"),
	}
	if cfg.CacheSize > 0 {
		// lru.New only fails for a non-positive size.
		r.cache, _ = lru.New[string, []float32](cfg.CacheSize)
	}
	return r
}

// Load fills the index from the embeddings table. Entries whose vector
// cannot be decoded or indexed are logged and skipped.
func (r *Retriever) Load(ctx context.Context, reload bool) (*driving.LoadReport, error) {
	if r.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}
	report := &driving.LoadReport{}

	if reload {
		if err := r.index.Reset(ctx); err != nil {
			return nil, fmt.Errorf("reset index: %w", err)
		}
	} else if r.cfg.Persistent {
		n, err := r.index.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("count index: %w", err)
		}
		if n > 0 {
			r.log.Info("reusing persistent index", zap.Int("entries", n))
			report.Loaded = n
			report.Reused = true
			return report, nil
		}
	}

	batch := make([]driven.VectorEntry, 0, loadBatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		added, skipped := r.addBatch(ctx, batch)
		report.Loaded += added
		report.Skipped += skipped
		batch = batch[:0]
	}

	err := r.embeddings.ListEmbeddings(ctx, nil, func(rec domain.EmbeddingRecord, decodeErr error) error {
		if decodeErr != nil || len(rec.Vector) == 0 {
			r.log.Warn("skipping malformed embedding",
				zap.String("id", rec.IndexKey()), zap.NamedError("cause", decodeErr))
			report.Skipped++
			return nil
		}
		batch = append(batch, entryFor(rec))
		if len(batch) == loadBatchSize {
			flush()
		}
		return ctx.Err()
	})
	if err != nil {
		return report, fmt.Errorf("list embeddings: %w", err)
	}
	flush()

	r.log.Info("index loaded", zap.Int("loaded", report.Loaded), zap.Int("skipped", report.Skipped))
	return report, nil
}

// addBatch adds a batch, falling back to one entry at a time so a single
// bad vector does not lose its neighbours.
func (r *Retriever) addBatch(ctx context.Context, batch []driven.VectorEntry) (added, skipped int) {
	if err := r.index.Add(ctx, batch); err == nil {
		return len(batch), 0
	}
	for _, e := range batch {
		if err := r.index.Add(ctx, []driven.VectorEntry{e}); err != nil {
			r.log.Warn("skipping unindexable embedding", zap.String("id", e.ID), zap.Error(err))
			skipped++
			continue
		}
		added++
	}
	return added, skipped
}

// Search embeds query and returns the k most similar records.
func (r *Retriever) Search(ctx context.Context, query string, k int) ([]domain.SearchHit, error) {
	if r.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if r.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	vec, err := r.queryVector(ctx, query)
	if err != nil {
		return nil, err
	}

	hits, err := r.index.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	out := make([]domain.SearchHit, len(hits))
	for i, h := range hits {
		out[i] = domain.SearchHit{
			EntityID: h.Metadata[MetaEntityID],
			Kind:     domain.EntityKind(h.Metadata[MetaKind]),
			Text:     h.Text,
			Score:    h.Similarity,
		}
	}
	logger.Debug("retrieved %d hits for %q", len(out), query)
	return out, nil
}

func (r *Retriever) queryVector(ctx context.Context, query string) ([]float32, error) {
	if r.cache != nil {
		if v, ok := r.cache.Get(query); ok {
			return v, nil
		}
	}
	vec, err := retry.DoWithResult(ctx, r.retry, func() ([]float32, error) {
		return r.embedder.Embed(ctx, query)
	})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if r.cache != nil {
		r.cache.Add(query, vec)
	}
	return vec, nil
}
