package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizarcade/internal/ui/theme"
)

// ProgressBar shows how far through a session the player is.
type ProgressBar struct {
	Index int // zero-based position
	Total int
	Width int
}

// NewProgressBar creates a progress bar for position index of total.
func NewProgressBar(index, total, width int) ProgressBar {
	return ProgressBar{Index: index, Total: total, Width: width}
}

// Label returns the "Question i of n" caption.
func (p ProgressBar) Label() string {
	if p.Total == 0 {
		return "No questions"
	}
	return fmt.Sprintf("Question %d of %d", p.Index+1, p.Total)
}

// Filled returns how many cells of a bar of barWidth are filled.
func (p ProgressBar) Filled(barWidth int) int {
	if p.Total <= 0 || barWidth <= 0 {
		return 0
	}
	n := barWidth * (p.Index + 1) / p.Total
	return min(max(n, 0), barWidth)
}

// View renders the caption followed by the bar.
func (p ProgressBar) View() string {
	label := theme.Body.Render(p.Label()) + "  "
	barWidth := max(p.Width-lipgloss.Width(label), 4)
	filled := p.Filled(barWidth)

	return label +
		theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled))
}
