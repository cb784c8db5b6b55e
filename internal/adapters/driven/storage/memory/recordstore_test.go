package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paddock/internal/core/domain"
)

func TestRecordStore_UpsertDriverTwice_NoDuplicate(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore()

	first := domain.Driver{DriverRef: "hamilton", Season: 2020, GivenName: "Lewis", FamilyName: "Hamilton", Nationality: "Unknown"}
	require.NoError(t, store.UpsertDrivers(ctx, []domain.Driver{first}))

	second := first
	second.Nationality = "British"
	second.Number = "44"
	require.NoError(t, store.UpsertDrivers(ctx, []domain.Driver{second}))

	drivers, err := store.ListDrivers(ctx, 2020)
	require.NoError(t, err)
	require.Len(t, drivers, 1)
	assert.Equal(t, "British", drivers[0].Nationality)
	assert.Equal(t, "44", drivers[0].Number)
}

func TestRecordStore_UpsertKeepsEmbedding(t *testing.T) {
	ctx := context.Background()
	records := NewRecordStore()
	embeddings := NewEmbeddingStore(records)

	require.NoError(t, records.UpsertCircuits(ctx, []domain.Circuit{{CircuitID: "monza", Name: "Monza"}}))
	require.NoError(t, embeddings.SaveEmbedding(ctx, domain.EmbeddingRecord{
		EntityID: "monza", Kind: domain.KindCircuit, Text: "Monza", Vector: []float32{1, 0},
	}))
	require.NoError(t, records.UpsertCircuits(ctx, []domain.Circuit{{CircuitID: "monza", Name: "Autodromo Nazionale di Monza"}}))

	circuits, err := records.ListCircuits(ctx)
	require.NoError(t, err)
	require.Len(t, circuits, 1)
	assert.Equal(t, "Autodromo Nazionale di Monza", circuits[0].Name)
	assert.Equal(t, []float32{1, 0}, circuits[0].Embedding)
}

func TestRecordStore_Seasons(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore()

	require.NoError(t, store.UpsertRaces(ctx, []domain.Race{
		{Season: 2021, Round: 1, CircuitID: "bahrain"},
		{Season: 2020, Round: 1, CircuitID: "red_bull_ring"},
		{Season: 2020, Round: 2, CircuitID: "red_bull_ring"},
	}))

	seasons, err := store.Seasons(ctx, domain.KindRace)
	require.NoError(t, err)
	assert.Equal(t, []int{2020, 2021}, seasons)

	_, err = store.Seasons(ctx, domain.KindCircuit)
	assert.ErrorIs(t, err, domain.ErrNotPartitioned)

	n, err := store.Count(ctx, domain.KindRace)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRecordStore_Existing(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore()
	require.NoError(t, store.UpsertCircuits(ctx, []domain.Circuit{{CircuitID: "spa"}}))
	require.NoError(t, store.UpsertDrivers(ctx, []domain.Driver{{DriverRef: "senna", Season: 1988}}))

	circuits, err := store.ExistingCircuits(ctx, []string{"spa", "monaco"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"spa": true}, circuits)

	drivers, err := store.ExistingDrivers(ctx, []domain.DriverKey{
		{DriverRef: "senna", Season: 1988},
		{DriverRef: "senna", Season: 1989},
	})
	require.NoError(t, err)
	assert.Len(t, drivers, 1)
	assert.True(t, drivers[domain.DriverKey{DriverRef: "senna", Season: 1988}])
}

func TestRecordStore_ResultsKeyedBySeasonCircuitDriver(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore()
	require.NoError(t, store.UpsertResults(ctx, []domain.Result{
		{Season: 2020, Round: 1, CircuitID: "red_bull_ring", DriverRef: "bottas", Position: "1"},
		{Season: 2020, Round: 2, CircuitID: "red_bull_ring", DriverRef: "bottas", Position: "3"},
	}))

	results, err := store.ListResults(ctx, 2020)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].Round)
}
