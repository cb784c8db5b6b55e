package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/custodia-labs/paddock/internal/core/domain"
	"github.com/custodia-labs/paddock/internal/core/ports/driven"
)

// Ensure EmbeddingStore implements the interface.
var _ driven.EmbeddingStore = (*EmbeddingStore)(nil)

// EmbeddingStore is an in-memory implementation of driven.EmbeddingStore.
// It writes inline vectors onto the rows held by the paired RecordStore.
type EmbeddingStore struct {
	mu      sync.RWMutex
	records *RecordStore
	byKey   map[string]domain.EmbeddingRecord
}

// NewEmbeddingStore creates an embedding store paired with records.
func NewEmbeddingStore(records *RecordStore) *EmbeddingStore {
	return &EmbeddingStore{
		records: records,
		byKey:   make(map[string]domain.EmbeddingRecord),
	}
}

// SaveEmbedding stores the record and the inline row vector.
func (s *EmbeddingStore) SaveEmbedding(_ context.Context, rec domain.EmbeddingRecord) error {
	if rec.EntityID == "" || !rec.Kind.IsValid() {
		return domain.ErrInvalidInput
	}
	if err := s.records.setEmbedding(rec.Kind, rec.EntityID, slices.Clone(rec.Vector)); err != nil {
		return err
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}
	rec.Vector = slices.Clone(rec.Vector)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byKey[rec.IndexKey()] = rec
	return nil
}

// ListEmbeddings passes stored records of kinds to fn, ordered by key.
func (s *EmbeddingStore) ListEmbeddings(_ context.Context, kinds []domain.EntityKind, fn func(domain.EmbeddingRecord, error) error) error {
	s.mu.RLock()
	keys := make([]string, 0, len(s.byKey))
	for k, rec := range s.byKey {
		if len(kinds) == 0 || slices.Contains(kinds, rec.Kind) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	recs := make([]domain.EmbeddingRecord, len(keys))
	for i, k := range keys {
		recs[i] = s.byKey[k]
	}
	s.mu.RUnlock()

	for _, rec := range recs {
		var decodeErr error
		if len(rec.Vector) == 0 {
			decodeErr = domain.ErrMalformedVector
		}
		if err := fn(rec, decodeErr); err != nil {
			return err
		}
	}
	return nil
}

// CountEmbeddings returns the number of records of kind.
func (s *EmbeddingStore) CountEmbeddings(_ context.Context, kind domain.EntityKind) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, rec := range s.byKey {
		if rec.Kind == kind {
			n++
		}
	}
	return n, nil
}

// Put stores a record without touching the row table. Tests use it to seed
// malformed entries.
func (s *EmbeddingStore) Put(rec domain.EmbeddingRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byKey[rec.IndexKey()] = rec
}
