package search

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paddock/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/paddock/internal/core/domain"
	"github.com/custodia-labs/paddock/internal/core/ports/driving"
)

// mockRetrievalService implements driving.RetrievalService for testing.
type mockRetrievalService struct {
	hits  []domain.SearchHit
	err   error
	query string
	k     int
}

func (m *mockRetrievalService) Load(context.Context, bool) (*driving.LoadReport, error) {
	return &driving.LoadReport{}, nil
}

func (m *mockRetrievalService) Search(_ context.Context, query string, k int) ([]domain.SearchHit, error) {
	m.query, m.k = query, k
	return m.hits, m.err
}

func search(t *testing.T, v *View, query string) *View {
	t.Helper()
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(query)})
	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	v, _ = v.Update(cmd())
	return v
}

func TestSearch_ShowsHits(t *testing.T) {
	svc := &mockRetrievalService{hits: []domain.SearchHit{
		{Kind: domain.KindCircuit, EntityID: "monza", Text: "Autodromo Nazionale di Monza is in Monza, Italy.", Score: 0.88},
	}}
	v := NewView(nil, nil, svc)
	v.SetDimensions(120, 30)

	v = search(t, v, "italian circuits")

	assert.Equal(t, "italian circuits", svc.query)
	assert.Equal(t, DefaultLimit, svc.k)
	assert.Len(t, v.Hits(), 1)
	assert.False(t, v.InputFocused())
	assert.Contains(t, v.View(), "monza")
	assert.Contains(t, v.View(), "1 results")
}

func TestSearch_NavigateAndReturnToInput(t *testing.T) {
	svc := &mockRetrievalService{hits: []domain.SearchHit{
		{Kind: domain.KindDriver, EntityID: "hill"},
		{Kind: domain.KindDriver, EntityID: "hunt"},
	}}
	v := search(t, NewView(nil, nil, svc), "british champions")

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyDown})
	require.NotNil(t, v.SelectedHit())
	assert.Equal(t, "hunt", v.SelectedHit().EntityID)

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, v.InputFocused())
}

func TestSearch_EmptyQueryIgnored(t *testing.T) {
	v := NewView(nil, nil, &mockRetrievalService{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
}

func TestSearch_Error(t *testing.T) {
	v := NewView(nil, nil, &mockRetrievalService{err: errors.New("embedding service unavailable")})

	v = search(t, v, "anything")

	assert.Error(t, v.Err())
	assert.True(t, v.InputFocused())
}

func TestSearch_NoService(t *testing.T) {
	v := NewView(nil, nil, nil)

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, messages.ErrorOccurred{Err: ErrNoRetrievalService}, cmd())
}
