// Package screen defines what the console router stacks.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizarcade/internal/play"
	"github.com/abhisek/quizarcade/internal/ui/layout"
)

// Screen is one view of the console.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	// View renders the content area, excluding header and footer.
	View(width, height int) string
	Title() string
}

// KeyHintProvider is implemented by screens with their own footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StateMsg carries a fresh play snapshot. The app delivers it to every
// screen on the stack, not only the active one.
type StateMsg struct {
	State play.State
}

// ErrMsg reports a failed console action.
type ErrMsg struct {
	Err error
}
