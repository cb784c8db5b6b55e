package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paddock/internal/core/domain"
	"github.com/custodia-labs/paddock/internal/core/ports/driving"
)

func TestMissingCmd_AllKinds(t *testing.T) {
	setupServices(t, &Services{Sync: &mockSyncService{missing: map[domain.EntityKind][]int{
		domain.KindRace:   {1950, 1951, 1952, 1960},
		domain.KindResult: {2023},
	}}})

	out, _, err := execute(t, "missing")

	require.NoError(t, err)
	assert.Contains(t, out, "1950-1952, 1960")
	assert.Contains(t, out, "2023")
	assert.Contains(t, out, "none")
}

func TestMissingCmd_OneKind(t *testing.T) {
	setupServices(t, &Services{Sync: &mockSyncService{missing: map[domain.EntityKind][]int{
		domain.KindDriver: {1999},
	}}})

	out, _, err := execute(t, "missing", "driver")

	require.NoError(t, err)
	assert.Contains(t, out, "drivers")
	assert.NotContains(t, out, "races")
}

func TestMissingCmd_CircuitsAreNotPartitioned(t *testing.T) {
	setupServices(t, &Services{Sync: &mockSyncService{}})

	_, _, err := execute(t, "missing", "circuits")

	assert.ErrorIs(t, err, domain.ErrNotPartitioned)
}

func TestFormatYears(t *testing.T) {
	tests := []struct {
		years []int
		want  string
	}{
		{nil, "none"},
		{[]int{1950}, "1950"},
		{[]int{1950, 1951}, "1950-1951"},
		{[]int{1950, 1952, 1953, 1954, 2000}, "1950, 1952-1954, 2000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatYears(tt.years))
	}
}

func TestEmbedCmd_RegeneratesKinds(t *testing.T) {
	gen := &mockEmbeddingGenerator{report: driving.EmbeddingReport{Embedded: 20, Failed: 1}}
	setupServices(t, &Services{Embedding: gen})

	out, _, err := execute(t, "embed", "drivers", "results")

	require.NoError(t, err)
	assert.Equal(t, []domain.EntityKind{domain.KindDriver, domain.KindResult}, gen.kinds)
	assert.Contains(t, out, "Embedded 20 records.")
	assert.Contains(t, out, "1 records failed.")
}

func TestEmbedCmd_NotConfigured(t *testing.T) {
	setupServices(t, nil)

	_, _, err := execute(t, "embed")

	assert.ErrorIs(t, err, errNotConfigured)
}

func TestIndexCmd_Reload(t *testing.T) {
	retrieval := &mockRetrievalService{load: driving.LoadReport{Loaded: 10, Skipped: 2}}
	setupServices(t, &Services{Retrieval: retrieval})

	out, _, err := execute(t, "index", "--reload")

	require.NoError(t, err)
	assert.Equal(t, []bool{true}, retrieval.loads)
	assert.Contains(t, out, "Loaded 10 embeddings.")
	assert.Contains(t, out, "Skipped 2 malformed embeddings.")
}

func TestIndexCmd_ReusesPersistentIndex(t *testing.T) {
	retrieval := &mockRetrievalService{load: driving.LoadReport{Loaded: 10, Reused: true}}
	setupServices(t, &Services{Retrieval: retrieval})

	out, _, err := execute(t, "index")

	require.NoError(t, err)
	assert.Equal(t, []bool{false}, retrieval.loads)
	assert.Contains(t, out, "--reload")
}
