package templates

import (
	"context"

	"github.com/abhisek/quizarcade/internal/quiz"
)

// Template is a reusable game document that hosts a single question.
type Template struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Code          string              `json:"code"`
	Controls      []ControlDescriptor `json:"game_controls"`
	Instructions  string              `json:"game_instructions,omitempty"`
	SupportedType quiz.QuestionType   `json:"supported_question_type"`
}

// ControlDescriptor describes one input binding a template listens to.
type ControlDescriptor struct {
	Type        string   `json:"type,omitempty"`
	Keys        []string `json:"keys,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Repository is the read-only template source.
type Repository interface {
	// ByTypes returns every template whose supported type is in types.
	// An empty types slice yields no templates and no error.
	ByTypes(ctx context.Context, types []quiz.QuestionType) ([]Template, error)
}
