package templates

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/abhisek/quizarcade/internal/quiz"
)

// Pairing binds one question to the template chosen for it.
type Pairing struct {
	Question quiz.Question
	Template Template
}

// Selector assigns a compatible template to every question.
type Selector struct {
	repo Repository
	intN func(n int) int
}

// NewSelector creates a Selector drawing from repo. When rng is nil the
// process-wide random source is used; tests pass a seeded *rand.Rand.
func NewSelector(repo Repository, rng *rand.Rand) *Selector {
	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}
	return &Selector{repo: repo, intN: intN}
}

// Select fetches all candidate templates in one repository call and picks one
// uniformly at random per question. Results follow the input order. If any
// question's type has no template the whole batch fails with a
// *NoTemplateError.
func (s *Selector) Select(ctx context.Context, questions []quiz.Question) ([]Pairing, error) {
	if len(questions) == 0 {
		return nil, nil
	}

	types := quiz.Types(questions)
	candidates, err := s.repo.ByTypes(ctx, types)
	if err != nil {
		return nil, fmt.Errorf("fetch templates: %w", err)
	}

	pools := make(map[quiz.QuestionType][]Template, len(types))
	for _, t := range candidates {
		pools[t.SupportedType] = append(pools[t.SupportedType], t)
	}

	out := make([]Pairing, 0, len(questions))
	for _, q := range questions {
		pool := pools[q.Type]
		if len(pool) == 0 {
			return nil, &NoTemplateError{Type: q.Type}
		}
		out = append(out, Pairing{Question: q, Template: pool[s.intN(len(pool))]})
	}
	return out, nil
}
