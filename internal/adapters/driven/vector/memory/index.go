// Package memory provides an in-process vector index using exact cosine
// similarity. It is rebuilt from the embeddings table on every start.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"math"
	"slices"
	"sync"

	"github.com/custodia-labs/paddock/internal/core/domain"
	"github.com/custodia-labs/paddock/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

type entry struct {
	driven.VectorEntry
	norm float64
}

// Index is a brute-force cosine similarity index.
type Index struct {
	mu         sync.RWMutex
	configured int
	dimensions int
	entries    map[string]entry
}

// NewIndex creates an index for vectors of the given size.
// A zero size accepts the dimension of the first vector added.
func NewIndex(dimensions int) *Index {
	return &Index{
		configured: dimensions,
		dimensions: dimensions,
		entries:    make(map[string]entry),
	}
}

// Add inserts or replaces entries.
func (x *Index) Add(_ context.Context, entries []driven.VectorEntry) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("%w: vector entry without id", domain.ErrInvalidInput)
		}
		if x.dimensions == 0 {
			x.dimensions = len(e.Vector)
		}
		if len(e.Vector) != x.dimensions {
			return fmt.Errorf("%w: %s has %d dimensions, index expects %d",
				domain.ErrMalformedVector, e.ID, len(e.Vector), x.dimensions)
		}
		n := norm(e.Vector)
		if n == 0 {
			return fmt.Errorf("%w: %s is a zero vector", domain.ErrMalformedVector, e.ID)
		}
		e.Vector = slices.Clone(e.Vector)
		e.Metadata = maps.Clone(e.Metadata)
		x.entries[e.ID] = entry{VectorEntry: e, norm: n}
	}
	return nil
}

// Search returns the k entries most similar to query, best first.
func (x *Index) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	if len(x.entries) == 0 {
		return nil, nil
	}
	if len(query) != x.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, index expects %d",
			domain.ErrInvalidInput, len(query), x.dimensions)
	}
	qn := norm(query)
	if qn == 0 {
		return nil, fmt.Errorf("%w: zero query vector", domain.ErrInvalidInput)
	}

	hits := make([]driven.VectorHit, 0, len(x.entries))
	for _, e := range x.entries {
		hits = append(hits, driven.VectorHit{
			ID:         e.ID,
			Text:       e.Text,
			Metadata:   e.Metadata,
			Similarity: dot(query, e.Vector) / (qn * e.norm),
		})
	}
	slices.SortFunc(hits, func(a, b driven.VectorHit) int {
		return cmp.Or(cmp.Compare(b.Similarity, a.Similarity), cmp.Compare(a.ID, b.ID))
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Reset removes every entry. An inferred dimension is forgotten so the next
// Add may use a different embedding model.
func (x *Index) Reset(_ context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	clear(x.entries)
	x.dimensions = x.configured
	return nil
}

// Count returns the number of entries.
func (x *Index) Count(_ context.Context) (int, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries), nil
}

// Close is a no-op.
func (x *Index) Close() error {
	return nil
}

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func norm(v []float32) float64 {
	return math.Sqrt(dot(v, v))
}
