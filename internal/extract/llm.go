package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/quizarcade/internal/llm"
	"github.com/abhisek/quizarcade/internal/quiz"
)

const extractSystemPrompt = `You turn study material into quiz questions.

Read the attached document and write questions that test its key facts.
Use two kinds of question:
- "mcq": three to five choices, exactly one correct.
- "true_false": exactly two choices, "True" and "False", one correct.

Number questions from 1. Every choice gets a one-sentence explanation of
why it is right or wrong. Do not invent facts the document does not state.`

// LLMExtractor asks a language model to write questions from a document.
type LLMExtractor struct {
	provider  llm.Provider
	maxTokens int
	timeout   time.Duration
	count     int
}

// LLMOption configures an LLMExtractor.
type LLMOption func(*LLMExtractor)

// WithMaxTokens bounds the model response.
func WithMaxTokens(n int) LLMOption {
	return func(e *LLMExtractor) { e.maxTokens = n }
}

// WithTimeout bounds a single extraction.
func WithTimeout(d time.Duration) LLMOption {
	return func(e *LLMExtractor) { e.timeout = d }
}

// WithQuestionCount sets how many questions to ask for.
func WithQuestionCount(n int) LLMOption {
	return func(e *LLMExtractor) { e.count = n }
}

// NewLLMExtractor creates an extractor backed by provider.
func NewLLMExtractor(provider llm.Provider, opts ...LLMOption) *LLMExtractor {
	e := &LLMExtractor{
		provider:  provider,
		maxTokens: 8192,
		timeout:   2 * time.Minute,
		count:     8,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *LLMExtractor) Extract(ctx context.Context, doc Document) ([]quiz.Question, error) {
	var mediaType string
	switch {
	case doc.IsPDF():
		mediaType = "application/pdf"
	case doc.IsText():
		mediaType = "text/plain"
	default:
		return nil, failed(fmt.Errorf("%w: %s", ErrUnsupportedDocument, doc.Name))
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeExtract)

	resp, err := e.provider.Generate(ctx, llm.Request{
		System: extractSystemPrompt,
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: fmt.Sprintf("Write %d questions about the attached document.", e.count),
		}},
		Documents: []llm.Document{{Name: doc.Name, MediaType: mediaType, Data: doc.Data}},
		Schema: &llm.Schema{
			Name:        "question-set",
			Description: "Quiz questions extracted from a document",
			Definition:  questionSetSchema(true),
		},
		MaxTokens: e.maxTokens,
	})
	if err != nil {
		return nil, failed(err)
	}
	if resp.StopReason == "max_tokens" {
		return nil, failed(&llm.ErrMaxTokensExceeded{Content: resp.Content})
	}

	questions, err := decodeQuestionSet(resp.Content)
	if err != nil {
		return nil, failed(err)
	}
	return finish(questions)
}
