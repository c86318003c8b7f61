// Package llm reads quiz documents with a language model. Each vendor SDK
// sits behind Provider; retry and event logging wrap it as decorators.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Provider turns a prompt plus attached documents into a JSON reply.
type Provider interface {
	// Generate returns Content that already satisfies req.Schema when one
	// is set. A reply cut short by the token limit is an error, never a
	// partial result.
	Generate(ctx context.Context, req Request) (*Response, error)

	ModelID() string
}

type Request struct {
	System   string
	Messages []Message

	// Documents ride on the first user message, ahead of its text.
	Documents []Document

	// Schema switches the vendor into structured output. Nil means free text.
	Schema *Schema

	MaxTokens   int
	Temperature float64 // zero leaves the vendor default
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// Document is an uploaded file the model reads.
type Document struct {
	Name      string
	MediaType string
	Data      []byte
}

// IsText reports whether the document can be inlined into a prompt.
func (d Document) IsText() bool {
	return strings.HasPrefix(d.MediaType, "text/") || d.MediaType == "application/json"
}

func (d Document) IsPDF() bool {
	return d.MediaType == "application/pdf"
}

// documentText wraps a text document in a named block for inlining.
func documentText(d Document) string {
	return fmt.Sprintf("<document name=%q>\n%s\n</document>\n\n", d.Name, d.Data)
}

// Schema is a named JSON Schema. Name doubles as the vendor-side schema
// or tool name, so keep it kebab-case ("question-set").
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

type Response struct {
	Content json.RawMessage
	Usage   Usage

	// Model is what the vendor reports having served, which may be a dated
	// snapshot of the configured alias.
	Model string

	// StopReason is "end" or "max_tokens".
	StopReason string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
