package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paddock/internal/core/domain"
	"github.com/custodia-labs/paddock/internal/core/ports/driven"
)

func TestIndex_SearchRanksByCosine(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex(2)
	require.NoError(t, idx.Add(ctx, []driven.VectorEntry{
		{ID: "east", Vector: []float32{1, 0}, Text: "east"},
		{ID: "north", Vector: []float32{0, 1}, Text: "north"},
		{ID: "northeast", Vector: []float32{1, 1}, Text: "northeast", Metadata: map[string]string{"kind": "circuits"}},
	}))

	hits, err := idx.Search(ctx, []float32{0.9, 1}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "northeast", hits[0].ID)
	assert.Equal(t, "circuits", hits[0].Metadata["kind"])
	assert.Equal(t, "north", hits[1].ID)
	assert.Greater(t, hits[0].Similarity, hits[1].Similarity)
}

func TestIndex_AddReplacesByID(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex(0)
	require.NoError(t, idx.Add(ctx, []driven.VectorEntry{{ID: "a", Vector: []float32{1, 0, 0}, Text: "old"}}))
	require.NoError(t, idx.Add(ctx, []driven.VectorEntry{{ID: "a", Vector: []float32{0, 1, 0}, Text: "new"}}))

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	hits, err := idx.Search(ctx, []float32{0, 1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "new", hits[0].Text)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-9)
}

func TestIndex_RejectsBadVectors(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex(2)
	assert.ErrorIs(t, idx.Add(ctx, []driven.VectorEntry{{ID: "a", Vector: []float32{1, 2, 3}}}), domain.ErrMalformedVector)
	assert.ErrorIs(t, idx.Add(ctx, []driven.VectorEntry{{ID: "z", Vector: []float32{0, 0}}}), domain.ErrMalformedVector)
	assert.ErrorIs(t, idx.Add(ctx, []driven.VectorEntry{{Vector: []float32{1, 0}}}), domain.ErrInvalidInput)

	require.NoError(t, idx.Add(ctx, []driven.VectorEntry{{ID: "ok", Vector: []float32{1, 0}}}))
	_, err := idx.Search(ctx, []float32{1}, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIndex_ResetAndEmpty(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex(2)
	hits, err := idx.Search(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, hits)

	require.NoError(t, idx.Add(ctx, []driven.VectorEntry{{ID: "a", Vector: []float32{1, 0}}}))
	require.NoError(t, idx.Reset(ctx))
	n, _ := idx.Count(ctx)
	assert.Zero(t, n)
	assert.NoError(t, idx.Close())
}

func TestIndex_ResetForgetsInferredDimensions(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex(0)
	require.NoError(t, idx.Add(ctx, []driven.VectorEntry{{ID: "a", Vector: []float32{1, 0, 0}}}))
	require.NoError(t, idx.Reset(ctx))

	require.NoError(t, idx.Add(ctx, []driven.VectorEntry{{ID: "b", Vector: []float32{0, 1}}}))
	hits, err := idx.Search(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "b", hits[0].ID)
}

func TestIndex_ResetKeepsConfiguredDimensions(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex(2)
	require.NoError(t, idx.Reset(ctx))

	err := idx.Add(ctx, []driven.VectorEntry{{ID: "a", Vector: []float32{1, 0, 0}}})
	assert.ErrorIs(t, err, domain.ErrMalformedVector)
}
