package cli

import (
	"os"

	"golang.org/x/term"

	"github.com/custodia-labs/paddock/internal/adapters/driving/tui/styles"
)

var style = styles.DefaultStyles()

// interactive reports whether stdin is a terminal.
func interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
