// Package extract turns an uploaded document into quiz questions.
package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/abhisek/quizarcade/internal/quiz"
)

// ErrExtractionFailed is matched by every extraction failure.
var ErrExtractionFailed = errors.New("extraction failed")

// ErrUnsupportedDocument is returned for documents an extractor cannot read.
var ErrUnsupportedDocument = errors.New("unsupported document")

// Error carries the details of a failed extraction. Status and Body are set
// when the failure came from a remote service's HTTP response.
type Error struct {
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(ErrExtractionFailed.Error())
	if e.Status != 0 {
		fmt.Fprintf(&b, ": status %d", e.Status)
		if e.Body != "" {
			fmt.Fprintf(&b, " %s", e.Body)
		}
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrExtractionFailed}
	}
	return []error{ErrExtractionFailed, e.Err}
}

func failed(err error) error {
	return &Error{Err: err}
}

// Document is an uploaded file.
type Document struct {
	Name        string
	ContentType string
	Data        []byte
}

// IsPDF accepts a document by content type or by .pdf extension.
func (d Document) IsPDF() bool {
	return d.ContentType == "application/pdf" || strings.EqualFold(filepath.Ext(d.Name), ".pdf")
}

// IsText reports whether the document is plain text or markdown.
func (d Document) IsText() bool {
	if strings.HasPrefix(d.ContentType, "text/") {
		return true
	}
	switch strings.ToLower(filepath.Ext(d.Name)) {
	case ".txt", ".md", ".markdown":
		return true
	}
	return false
}

// Extractor produces questions from a document.
type Extractor interface {
	Extract(ctx context.Context, doc Document) ([]quiz.Question, error)
}

// finish checks the extracted set before it is handed to session assembly.
func finish(questions []quiz.Question) ([]quiz.Question, error) {
	if len(questions) == 0 {
		return nil, failed(errors.New("no questions were generated from this document"))
	}
	for i := range questions {
		if questions[i].Number == 0 {
			questions[i].Number = i + 1
		}
	}
	if err := quiz.ValidateAll(questions); err != nil {
		return nil, failed(err)
	}
	return questions, nil
}
