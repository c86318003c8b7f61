package templates

import (
	_ "embed"

	"github.com/abhisek/quizarcade/internal/quiz"
)

var (
	//go:embed seed/true_false.html
	trueFalseDoc string

	//go:embed seed/mcq_runner.html
	mcqRunnerDoc string
)

// Seed returns the built-in development templates, one per question type.
func Seed() []Template {
	return []Template{
		{
			ID:            "dev-true-false",
			Name:          "True or False",
			Code:          trueFalseDoc,
			Controls:      []ControlDescriptor{{Type: "click", Description: "Pick an answer"}},
			SupportedType: quiz.TypeTrueFalse,
		},
		{
			ID:   "dev-mcq-runner",
			Name: "Lane Runner",
			Code: mcqRunnerDoc,
			Controls: []ControlDescriptor{
				{Keys: []string{"←", "→"}, Description: "Switch lane"},
				{Keys: []string{"Space"}, Description: "Commit to the lane"},
			},
			Instructions:  "Steer into the lane holding the right answer, then commit.",
			SupportedType: quiz.TypeMCQ,
		},
	}
}
