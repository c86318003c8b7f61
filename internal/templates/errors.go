package templates

import (
	"errors"
	"fmt"

	"github.com/abhisek/quizarcade/internal/quiz"
)

// ErrNoTemplateForType is matched by every NoTemplateError.
var ErrNoTemplateForType = errors.New("no template for question type")

// NoTemplateError reports the question type that has no compatible template.
type NoTemplateError struct {
	Type quiz.QuestionType
}

func (e *NoTemplateError) Error() string {
	return fmt.Sprintf("no template available for type: %s", e.Type)
}

func (e *NoTemplateError) Unwrap() error { return ErrNoTemplateForType }
