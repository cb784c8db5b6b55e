package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/paddock/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/paddock/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/paddock/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/paddock/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/paddock/internal/adapters/driving/tui/views/search"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	chatView   *chat.View
	searchView *search.View

	currentView messages.ViewType

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application. A non-empty chatID resumes that chat.
func NewApp(ports *Ports, chatID string) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		chatView:    chat.NewView(s, km, ports.Chat, chatID),
		searchView:  search.NewView(s, km, ports.Retrieval),
		currentView: messages.ViewChat,
	}, nil
}

// WithContext sets the context used for service calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	a.searchView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("paddock"),
		a.chatView.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if keymap.Matches(msg.String(), a.keymap.Quit) {
			return a, tea.Quit
		}
		if keymap.Matches(msg.String(), a.keymap.SwitchView) {
			next := messages.ViewSearch
			if a.currentView == messages.ViewSearch {
				next = messages.ViewChat
			}
			return a, func() tea.Msg { return messages.ViewChanged{View: next} }
		}

	case messages.ViewChanged:
		a.currentView = msg.View
		if msg.View == messages.ViewSearch {
			return a, a.searchView.Focus()
		}
		return a, a.chatView.Focus()

	case messages.AnswerReceived, messages.HistoryLoaded:
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.SearchCompleted:
		a.searchView, cmd = a.searchView.Update(msg)
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward everything else to the active view.
	if a.currentView == messages.ViewSearch {
		a.searchView, cmd = a.searchView.Update(msg)
	} else {
		a.chatView, cmd = a.chatView.Update(msg)
	}
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	header := a.renderTabs()
	body := a.chatView.View()
	if a.currentView == messages.ViewSearch {
		body = a.searchView.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, "", body)
}

func (a *App) renderTabs() string {
	tab := func(v messages.ViewType, label string) string {
		if v == a.currentView {
			return a.styles.Selected.Render(" " + label + " ")
		}
		return a.styles.Muted.Render(" " + label + " ")
	}
	return a.styles.Title.Render("Paddock") + "  " + tab(messages.ViewChat, "Chat") + tab(messages.ViewSearch, "Search")
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// ChatView returns the chat view.
func (a *App) ChatView() *chat.View {
	return a.chatView
}

// SearchView returns the search view.
func (a *App) SearchView() *search.View {
	return a.searchView
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	// Two lines for the tab header.
	a.chatView.SetDimensions(width, height-2)
	a.searchView.SetDimensions(width, height-2)
}
