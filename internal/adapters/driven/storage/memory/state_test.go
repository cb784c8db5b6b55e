package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateStore(t *testing.T) {
	store := NewStateStore()
	assert.Zero(t, store.LastProcessed())
	assert.Equal(t, ":memory:", store.Path())

	require.NoError(t, store.SetLastProcessed(9))
	assert.Equal(t, int64(9), store.LastProcessed())
}
