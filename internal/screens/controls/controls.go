// Package controls shows how to play the current instance: the template's
// instructions and its control bindings.
package controls

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizarcade/internal/play"
	"github.com/abhisek/quizarcade/internal/screen"
	"github.com/abhisek/quizarcade/internal/ui/layout"
	"github.com/abhisek/quizarcade/internal/ui/theme"
)

// ControlsScreen implements screen.Screen.
type ControlsScreen struct {
	state play.State
}

var _ screen.Screen = (*ControlsScreen)(nil)
var _ screen.KeyHintProvider = (*ControlsScreen)(nil)

// New creates the screen for the given snapshot.
func New(st play.State) *ControlsScreen {
	return &ControlsScreen{state: st}
}

func (s *ControlsScreen) Init() tea.Cmd { return nil }

func (s *ControlsScreen) Title() string { return "Controls" }

func (s *ControlsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
}

func (s *ControlsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if m, ok := msg.(screen.StateMsg); ok {
		s.state = m.State
	}
	return s, nil
}

func (s *ControlsScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")

	if !s.state.Active {
		b.WriteString(theme.Hint.Render("  Nothing is being played."))
		return b.String()
	}

	b.WriteString("  ")
	b.WriteString(theme.Title.Render(s.state.TemplateName))
	b.WriteString("\n\n")

	if s.state.Instructions != "" {
		b.WriteString("  ")
		b.WriteString(theme.Body.Render(s.state.Instructions))
		b.WriteString("\n\n")
	}

	if len(s.state.Controls) == 0 {
		b.WriteString(theme.Hint.Render("  This game lists no controls."))
		b.WriteString("\n")
		return b.String()
	}

	for _, c := range s.state.Controls {
		b.WriteString("  ")
		for _, k := range c.Keys {
			b.WriteString(theme.Key.Render(k))
			b.WriteString(" ")
		}
		desc := c.Description
		if desc == "" {
			desc = c.Type
		}
		b.WriteString(theme.Body.Render(desc))
		b.WriteString("\n")
	}
	return b.String()
}
