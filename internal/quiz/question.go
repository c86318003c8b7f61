package quiz

import (
	"errors"
	"fmt"
)

// QuestionType is the kind of question a template can host.
type QuestionType string

const (
	TypeMCQ       QuestionType = "mcq"
	TypeTrueFalse QuestionType = "true_false"
)

// Valid reports whether t is a known question type.
func (t QuestionType) Valid() bool {
	switch t {
	case TypeMCQ, TypeTrueFalse:
		return true
	}
	return false
}

// Choice is a single answer option.
type Choice struct {
	Text        string `json:"text"`
	IsCorrect   bool   `json:"is_correct"`
	Explanation string `json:"explanation,omitempty"`
}

// Question is a quiz question as produced by the extraction service.
// Field names follow the extraction wire format.
type Question struct {
	Number  int          `json:"question_number"`
	Type    QuestionType `json:"question_type"`
	Prompt  string       `json:"question"`
	Choices []Choice     `json:"choices"`
}

var (
	ErrUnknownType      = errors.New("unknown question type")
	ErrNoCorrectChoice  = errors.New("question has no correct choice")
	ErrTrueFalseChoices = errors.New("true/false question must have exactly two choices")
)

// Validate checks the structural invariants of a question.
func (q Question) Validate() error {
	if !q.Type.Valid() {
		return fmt.Errorf("question %d: %w: %q", q.Number, ErrUnknownType, q.Type)
	}
	if q.Type == TypeTrueFalse && len(q.Choices) != 2 {
		return fmt.Errorf("question %d: %w (got %d)", q.Number, ErrTrueFalseChoices, len(q.Choices))
	}
	for _, c := range q.Choices {
		if c.IsCorrect {
			return nil
		}
	}
	return fmt.Errorf("question %d: %w", q.Number, ErrNoCorrectChoice)
}

// ValidateAll validates every question and returns the first failure.
func ValidateAll(questions []Question) error {
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Types returns the distinct question types present, in first-seen order.
func Types(questions []Question) []QuestionType {
	seen := make(map[QuestionType]bool, 2)
	var out []QuestionType
	for _, q := range questions {
		if seen[q.Type] {
			continue
		}
		seen[q.Type] = true
		out = append(out, q.Type)
	}
	return out
}
