// Package search provides the record search view for the TUI.
package search

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/paddock/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/paddock/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/paddock/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/paddock/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/paddock/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/paddock/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/paddock/internal/core/domain"
	"github.com/custodia-labs/paddock/internal/core/ports/driving"
)

// DefaultLimit is how many hits a search returns.
const DefaultLimit = 10

// View represents the search view with input, hit list, and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.Field
	list      *list.HitList
	statusbar *status.Bar

	retrieval driving.RetrievalService
	ctx       context.Context

	width      int
	height     int
	err        error
	focusInput bool // true = typing a query, false = navigating hits
}

// NewView creates a new search view.
func NewView(s *styles.Styles, km *keymap.KeyMap, retrieval driving.RetrievalService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewField(s, "Search:", "Brazilian world champions"),
		list:       list.NewHitList(s),
		statusbar:  status.NewBar(s, km.SearchHelp()),
		retrieval:  retrieval,
		ctx:        context.Background(),
		width:      80,
		height:     24,
		focusInput: true,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.focusInput {
		if keymap.Matches(msg.String(), v.keymap.Submit) {
			query := v.input.Value()
			if query == "" {
				return v, nil
			}
			v.statusbar.SetState(status.StateSearching)
			return v, v.performSearch(query)
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	// Results mode
	if keymap.Matches(msg.String(), v.keymap.Back) {
		v.focusInput = true
		return v, v.input.Focus()
	}
	v.list, _ = v.list.Update(msg)
	return v, nil
}

// performSearch runs the query against the index.
func (v *View) performSearch(query string) tea.Cmd {
	return func() tea.Msg {
		if v.retrieval == nil {
			return messages.ErrorOccurred{Err: ErrNoRetrievalService}
		}
		hits, err := v.retrieval.Search(v.ctx, query, DefaultLimit)
		return messages.SearchCompleted{Query: query, Hits: hits, Err: err}
	}
}

func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.list.SetHits(msg.Hits)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetResultCount(len(msg.Hits))

	if len(msg.Hits) > 0 {
		v.focusInput = false
		v.input.Blur()
	}
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the search view.
func (v *View) View() string {
	sections := []string{v.input.View(), ""}
	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}
	sections = append(sections, v.list.View(), "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-8) // header, input and status
	v.statusbar.SetWidth(width)
}

// Hits returns the current search hits.
func (v *View) Hits() []domain.SearchHit {
	return v.list.Hits()
}

// SelectedHit returns the highlighted hit.
func (v *View) SelectedHit() *domain.SearchHit {
	return v.list.SelectedHit()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Focus returns the view to input mode.
func (v *View) Focus() tea.Cmd {
	v.focusInput = true
	return v.input.Focus()
}
