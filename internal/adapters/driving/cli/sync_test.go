package cli

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paddock/internal/config"
	"github.com/custodia-labs/paddock/internal/core/domain"
	"github.com/custodia-labs/paddock/internal/core/ports/driving"
)

func TestSyncCmd_Use(t *testing.T) {
	assert.Equal(t, "sync", syncCmd.Use)
	assert.Equal(t, "Mirror Formula 1 data from the Ergast API", syncCmd.Short)
}

func TestSyncCmd_RunsWithFlags(t *testing.T) {
	svc := &mockSyncService{report: &domain.SyncReport{
		StartedAt: time.Now(),
		EndedAt:   time.Now(),
		Kinds: []domain.KindReport{
			{Kind: domain.KindCircuit, RowsWritten: 77},
			{Kind: domain.KindRace, RowsWritten: 40, YearsRequested: []int{2020, 2021}, YearsAbandoned: []int{2021}},
			{Kind: domain.KindResult, RowsWritten: 12, Dropped: 2},
		},
	}}
	setupServices(t, &Services{Sync: svc})

	out, _, err := execute(t, "sync", "--from", "2020", "--to", "2021", "--kind", "race,result", "--force-update")

	require.NoError(t, err)
	opts := svc.lastRun()
	assert.Equal(t, domain.SeasonRange{From: 2020, To: 2021}, opts.Seasons)
	assert.Equal(t, []domain.EntityKind{domain.KindRace, domain.KindResult}, opts.Kinds)
	assert.True(t, opts.ForceUpdate)

	assert.Contains(t, out, "Syncing seasons 2020-2021...")
	assert.Contains(t, out, "Sync report")
	assert.Contains(t, out, "abandoned seasons: [2021]")
	assert.Contains(t, out, "dropped results: 2")
	assert.Contains(t, out, "129 rows")
}

func TestSyncCmd_DefaultsToConfiguredSeasons(t *testing.T) {
	svc := &mockSyncService{}
	setupServices(t, &Services{
		Config: &config.Config{Sync: config.SyncConfig{From: 1988, To: 1990}},
		Sync:   svc,
	})

	_, _, err := execute(t, "sync")

	require.NoError(t, err)
	assert.Equal(t, domain.SeasonRange{From: 1988, To: 1990}, svc.lastRun().Seasons)
	assert.Empty(t, svc.lastRun().Kinds)
	assert.False(t, svc.lastRun().ForceUpdate)
}

func TestSyncCmd_RejectsInvalidRange(t *testing.T) {
	svc := &mockSyncService{}
	setupServices(t, &Services{Sync: svc})

	_, _, err := execute(t, "sync", "--from", "1949", "--to", "1950")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, svc.runs)
}

func TestSyncCmd_RejectsUnknownKind(t *testing.T) {
	setupServices(t, &Services{Sync: &mockSyncService{}})

	_, _, err := execute(t, "sync", "--kind", "teams")

	assert.ErrorIs(t, err, domain.ErrUnsupportedKind)
}

func TestSyncCmd_WithEmbeddings(t *testing.T) {
	plain := &mockSyncService{}
	embedding := &mockSyncService{}
	setupServices(t, &Services{
		Sync:      plain,
		EmbedSync: func() (driving.SyncService, error) { return embedding, nil },
	})

	_, _, err := execute(t, "sync", "--embeddings", "--from", "2000", "--to", "2000")

	require.NoError(t, err)
	assert.Empty(t, plain.runs)
	assert.Len(t, embedding.runs, 1)
}

func TestSyncCmd_EmbeddingsDisabled(t *testing.T) {
	setupServices(t, &Services{
		Config: &config.Config{Embedding: config.EmbeddingConfig{Provider: config.ProviderNone}},
		Sync:   &mockSyncService{},
	})

	_, _, err := execute(t, "sync", "--embeddings")

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestSyncCmd_ReportsFailure(t *testing.T) {
	svc := &mockSyncService{
		report: &domain.SyncReport{Kinds: []domain.KindReport{{Kind: domain.KindCircuit, BatchesFailed: 1}}},
		err:    errors.New("circuit catalog unavailable"),
	}
	setupServices(t, &Services{Sync: svc})

	out, _, err := execute(t, "sync", "--from", "2000", "--to", "2000")

	assert.ErrorContains(t, err, "sync failed: circuit catalog unavailable")
	assert.Contains(t, out, "failed batches: 1")
}

func TestSyncCmd_NotConfigured(t *testing.T) {
	setupServices(t, nil)

	_, _, err := execute(t, "sync")

	assert.ErrorIs(t, err, errNotConfigured)
}

func TestParseKinds(t *testing.T) {
	kinds, err := parseKinds([]string{"Driver", "circuits"})
	require.NoError(t, err)
	assert.Equal(t, []domain.EntityKind{domain.KindDriver, domain.KindCircuit}, kinds)

	kinds, err = parseKinds(nil)
	require.NoError(t, err)
	assert.Empty(t, kinds)
}
