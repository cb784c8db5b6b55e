package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paddock/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/paddock/internal/core/domain"
)

// stubChat implements driving.ChatService for testing.
type stubChat struct{}

func (stubChat) Poll(context.Context) (bool, error) { return false, nil }

func (stubChat) Ask(_ context.Context, _, text string) (*domain.Message, error) {
	return &domain.Message{ChatID: "c-1", Role: domain.RoleAssistant, Content: "echo " + text}, nil
}

func (stubChat) StartChat(context.Context, string) (*domain.Chat, error) { return nil, nil }

func (stubChat) Enqueue(context.Context, string, string) (*domain.Message, error) { return nil, nil }

func (stubChat) ListChats(context.Context) ([]domain.Chat, error) { return nil, nil }

func (stubChat) History(context.Context, string) ([]domain.Message, error) { return nil, nil }

func newTestApp(t *testing.T) *App {
	t.Helper()
	a, err := NewApp(&Ports{Chat: stubChat{}}, "")
	require.NoError(t, err)
	a.SetDimensions(120, 40)
	return a
}

func TestNewApp_RequiresChat(t *testing.T) {
	_, err := NewApp(&Ports{}, "")
	assert.ErrorIs(t, err, ErrMissingChatService)

	_, err = NewApp(nil, "")
	assert.ErrorIs(t, err, ErrMissingChatService)
}

func TestApp_NotReadyUntilSized(t *testing.T) {
	a, err := NewApp(&Ports{Chat: stubChat{}}, "")
	require.NoError(t, err)

	assert.Equal(t, "Initialising...", a.View())

	_, _ = a.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Contains(t, a.View(), "Paddock")
}

func TestApp_TabSwitchesViews(t *testing.T) {
	a := newTestApp(t)
	assert.Equal(t, messages.ViewChat, a.CurrentView())

	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.NotNil(t, cmd)
	_, _ = a.Update(cmd())
	assert.Equal(t, messages.ViewSearch, a.CurrentView())

	_, cmd = a.Update(tea.KeyMsg{Type: tea.KeyTab})
	_, _ = a.Update(cmd())
	assert.Equal(t, messages.ViewChat, a.CurrentView())
}

func TestApp_RoutesAnswersToChat(t *testing.T) {
	a := newTestApp(t)

	_, _ = a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Monaco 1988?")})
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	_, _ = a.Update(cmd())

	assert.Equal(t, "c-1", a.ChatView().ChatID())
	assert.Contains(t, a.View(), "echo Monaco 1988?")
}

func TestApp_Quit(t *testing.T) {
	a := newTestApp(t)

	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	_, cmd = a.Update(messages.Quit{})
	assert.Equal(t, tea.Quit(), cmd())
}
