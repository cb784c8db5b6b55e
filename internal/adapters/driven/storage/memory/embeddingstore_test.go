package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paddock/internal/core/domain"
)

func TestEmbeddingStore_SaveWritesRowAndTable(t *testing.T) {
	ctx := context.Background()
	records := NewRecordStore()
	store := NewEmbeddingStore(records)

	require.NoError(t, records.UpsertDrivers(ctx, []domain.Driver{{DriverRef: "prost", Season: 1985}}))
	require.NoError(t, store.SaveEmbedding(ctx, domain.EmbeddingRecord{
		EntityID: "prost/1985", Kind: domain.KindDriver, Text: "Alain Prost", Vector: []float32{0.5, 0.5},
	}))

	drivers, err := records.ListDrivers(ctx, 1985)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, drivers[0].Embedding)

	n, err := store.CountEmbeddings(ctx, domain.KindDriver)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEmbeddingStore_SaveUnknownRow(t *testing.T) {
	store := NewEmbeddingStore(NewRecordStore())
	err := store.SaveEmbedding(context.Background(), domain.EmbeddingRecord{
		EntityID: "nobody/2000", Kind: domain.KindDriver, Vector: []float32{1},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEmbeddingStore_ListFiltersAndFlagsMalformed(t *testing.T) {
	ctx := context.Background()
	store := NewEmbeddingStore(NewRecordStore())
	store.Put(domain.EmbeddingRecord{EntityID: "monza", Kind: domain.KindCircuit, Vector: []float32{1}})
	store.Put(domain.EmbeddingRecord{EntityID: "spa", Kind: domain.KindCircuit})
	store.Put(domain.EmbeddingRecord{EntityID: "2020/1", Kind: domain.KindRace, Vector: []float32{1}})

	var ids []string
	var bad int
	err := store.ListEmbeddings(ctx, []domain.EntityKind{domain.KindCircuit}, func(rec domain.EmbeddingRecord, decodeErr error) error {
		ids = append(ids, rec.EntityID)
		if decodeErr != nil {
			bad++
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"monza", "spa"}, ids)
	assert.Equal(t, 1, bad)
}
