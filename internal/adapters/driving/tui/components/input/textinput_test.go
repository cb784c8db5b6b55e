package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestNewField_IsFocused(t *testing.T) {
	f := NewField(nil, "Ask:", "Who won in 1950?")

	assert.True(t, f.Focused())
	assert.Empty(t, f.Value())
	assert.Contains(t, f.View(), "Ask:")
}

func TestField_TypingUpdatesValue(t *testing.T) {
	f := NewField(nil, "Ask:", "")

	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Senna")})

	assert.Equal(t, "Senna", f.Value())
}

func TestField_BlurAndReset(t *testing.T) {
	f := NewField(nil, "Search:", "")
	f.SetValue("monaco")

	f.Blur()
	assert.False(t, f.Focused())

	f.Reset()
	assert.Empty(t, f.Value())
}

func TestField_SetWidthHasFloor(t *testing.T) {
	f := NewField(nil, "Search:", "")

	f.SetWidth(10)
	assert.Equal(t, 20, f.textinput.Width)

	f.SetWidth(100)
	assert.Equal(t, 100-len("Search:")-6, f.textinput.Width)
}
