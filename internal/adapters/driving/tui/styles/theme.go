// Package styles provides the colour theme shared by paddock's terminal output.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/paddock/internal/core/domain"
)

// Theme is the colour palette.
type Theme struct {
	Primary    lipgloss.Color // racing red accent
	Secondary  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Border     lipgloss.Color
	Bar        lipgloss.Color // status bar background

	// Kinds colours the entity kind badges of search hits.
	Kinds map[domain.EntityKind]lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#E10600"),
		Secondary:  lipgloss.Color("#06B6D4"),
		Foreground: lipgloss.Color("#CDD6F4"),
		Muted:      lipgloss.Color("#6C7086"),
		Success:    lipgloss.Color("#A6E3A1"),
		Warning:    lipgloss.Color("#F9E2AF"),
		Error:      lipgloss.Color("#F38BA8"),
		Border:     lipgloss.Color("#45475A"),
		Bar:        lipgloss.Color("#181825"),
		Kinds: map[domain.EntityKind]lipgloss.Color{
			domain.KindCircuit:     lipgloss.Color("#94E2D5"),
			domain.KindConstructor: lipgloss.Color("#FAB387"),
			domain.KindDriver:      lipgloss.Color("#89B4FA"),
			domain.KindRace:        lipgloss.Color("#CBA6F7"),
			domain.KindResult:      lipgloss.Color("#F5C2E7"),
		},
	}
}

// Styles are the lipgloss styles built from a Theme.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style

	InputField lipgloss.Style
	StatusBar  lipgloss.Style

	// User and Assistant label transcript turns; Answer indents their bodies.
	User      lipgloss.Style
	Assistant lipgloss.Style
	Answer    lipgloss.Style

	kinds map[domain.EntityKind]lipgloss.Style
}

// NewStyles creates styles from a theme. A nil theme uses DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	s := &Styles{
		theme:    theme,
		Title:    fg(theme.Primary).Bold(true),
		Subtitle: fg(theme.Secondary).Bold(true),
		Normal:   fg(theme.Foreground),
		Muted:    fg(theme.Muted),
		Selected: fg(theme.Foreground).Background(theme.Primary).Bold(true),
		Error:    fg(theme.Error),
		Success:  fg(theme.Success),
		Warning:  fg(theme.Warning),

		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
		StatusBar: fg(theme.Muted).Background(theme.Bar).Padding(0, 1),

		User:      fg(theme.Secondary).Bold(true),
		Assistant: fg(theme.Primary).Bold(true),
		Answer:    lipgloss.NewStyle().PaddingLeft(2),

		kinds: make(map[domain.EntityKind]lipgloss.Style, len(theme.Kinds)),
	}
	for kind, c := range theme.Kinds {
		s.kinds[kind] = fg(c).Bold(true)
	}
	return s
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Kind returns the badge style for an entity kind, or Subtitle for kinds
// without a colour.
func (s *Styles) Kind(kind domain.EntityKind) lipgloss.Style {
	if st, ok := s.kinds[kind]; ok {
		return st
	}
	return s.Subtitle
}
