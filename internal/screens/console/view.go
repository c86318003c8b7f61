package console

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizarcade/internal/bridge"
	"github.com/abhisek/quizarcade/internal/ui/components"
	"github.com/abhisek/quizarcade/internal/ui/theme"
)

func (s *ConsoleScreen) View(width, height int) string {
	cw := min(width-4, 96)
	var b strings.Builder
	b.WriteString("\n")

	if !s.state.Active {
		b.WriteString(theme.Body.Render("  No active session."))
		b.WriteString("\n\n")
		if s.addr != "" {
			b.WriteString(theme.Hint.Render(fmt.Sprintf("  Upload a document at %s to start.", s.addr)))
			b.WriteString("\n")
		}
		s.writeStatus(&b)
		return b.String()
	}

	b.WriteString("  ")
	b.WriteString(components.NewProgressBar(s.state.Index, s.state.Total, cw).View())
	b.WriteString("\n\n")

	prompt := theme.Title.Render(s.state.Prompt)
	meta := theme.Hint.Render(fmt.Sprintf("%s · %s", s.state.TemplateName, s.state.QuestionType))
	b.WriteString(indent(components.Card(lipgloss.JoinVertical(lipgloss.Left, prompt, meta), cw)))
	b.WriteString("\n")

	mounted := s.state.FrameID != ""
	phase := "not mounted"
	if mounted {
		phase = s.state.Phase
	}
	b.WriteString("  Engine: ")
	b.WriteString(theme.PhaseStyle(s.state.Phase == bridge.EngineWrapped.String()).Render(phase))
	if mounted {
		b.WriteString(theme.Hint.Render("  frame " + s.state.FrameID))
	}
	b.WriteString("\n\n")

	b.WriteString(indent(components.Card(components.FeedbackView(s.state.Feedback), cw)))
	b.WriteString("\n")

	if s.goTo != nil {
		b.WriteString("  Go to question: ")
		b.WriteString(s.goTo.View())
		b.WriteString("\n")
	}
	s.writeStatus(&b)
	return b.String()
}

func (s *ConsoleScreen) writeStatus(b *strings.Builder) {
	if s.errMsg != "" {
		b.WriteString("\n  ")
		b.WriteString(theme.ErrorText.Render(s.errMsg))
		b.WriteString("\n")
	}
}

func indent(block string) string {
	lines := strings.Split(block, "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}
