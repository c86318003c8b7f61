package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizarcade/internal/bridge"
	"github.com/abhisek/quizarcade/internal/ui/theme"
)

// Card wraps content in a rounded border at width w.
func Card(content string, w int) string {
	return theme.Card.Width(max(w-2, 10)).Render(content)
}

// FeedbackView renders the feedback panel: the verdict and explanation, or a
// hint while the game has not reported anything.
func FeedbackView(fb *bridge.Feedback) string {
	if fb == nil {
		return theme.Hint.Render("Waiting for the player...")
	}
	verdict := theme.Incorrect.Render("Incorrect.")
	if fb.IsCorrect {
		verdict = theme.Correct.Render("Correct.")
	}
	if fb.Explanation == "" {
		return verdict
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, verdict, " ", theme.Body.Render(fb.Explanation))
}
