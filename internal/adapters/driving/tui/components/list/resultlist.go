// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/paddock/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/paddock/internal/core/domain"
)

// HitList displays search hits in a navigable list.
type HitList struct {
	hits     []domain.SearchHit
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewHitList creates an empty hit list.
func NewHitList(s *styles.Styles) *HitList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &HitList{styles: s, width: 80, height: 10}
}

// Update handles list navigation keys.
func (l *HitList) Update(msg tea.Msg) (*HitList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the visible part of the list.
func (l *HitList) View() string {
	if len(l.hits) == 0 {
		return l.styles.Muted.Render("No results")
	}

	lines := make([]string, 0, len(l.hits)+2)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Results (%d)", len(l.hits))), "")

	// Each hit takes two lines.
	visible := (l.height - 2) / 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := min(start+visible, len(l.hits))

	for i := start; i < end; i++ {
		lines = append(lines, l.renderHit(i, &l.hits[i]))
	}
	return strings.Join(lines, "\n")
}

func (l *HitList) renderHit(index int, hit *domain.SearchHit) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	score := fmt.Sprintf("%.2f", hit.Score)
	var titleLine string
	if index == l.selected {
		titleLine = l.styles.Selected.Render(fmt.Sprintf("%s%s %s  %s", indicator, hit.Kind, hit.EntityID, score))
	} else {
		titleLine = indicator + l.styles.Kind(hit.Kind).Render(string(hit.Kind)) + " " +
			l.styles.Normal.Render(hit.EntityID+"  ") + l.styles.Muted.Render(score)
	}

	text := hit.Text
	maxLen := max(l.width-6, 20)
	if len(text) > maxLen {
		text = text[:maxLen-3] + "..."
	}
	return titleLine + "\n" + l.styles.Muted.Render("    "+text)
}

// SetHits replaces the list contents and resets the selection.
func (l *HitList) SetHits(hits []domain.SearchHit) {
	l.hits = hits
	l.selected = 0
}

// Hits returns the current hits.
func (l *HitList) Hits() []domain.SearchHit {
	return l.hits
}

// Selected returns the index of the selected hit.
func (l *HitList) Selected() int {
	return l.selected
}

// SelectedHit returns the selected hit, or nil.
func (l *HitList) SelectedHit() *domain.SearchHit {
	if l.selected < 0 || l.selected >= len(l.hits) {
		return nil
	}
	return &l.hits[l.selected]
}

// MoveUp moves selection up.
func (l *HitList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *HitList) MoveDown() {
	if l.selected < len(l.hits)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *HitList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}
