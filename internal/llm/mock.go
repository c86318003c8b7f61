package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// MockResponse is one scripted reply.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider replies from a script instead of a model. Replies are served
// in order; once the script runs out the sticky reply, if any, is repeated
// and checked against the request schema, otherwise the provider reports
// itself unavailable. Every request is kept in Calls.
type MockProvider struct {
	mu     sync.Mutex
	script []MockResponse
	sticky *MockResponse
	model  string

	Calls []Request
}

// NewMockProvider scripts the given replies.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{script: responses, model: "mock"}
}

// NewReplayProvider answers every request with the JSON document at path.
// It lets the extractor run offline against a recorded question set.
func NewReplayProvider(path string) (*MockProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read replay file: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("replay file %s is not JSON", path)
	}
	return &MockProvider{
		sticky: &MockResponse{Content: json.RawMessage(data)},
		model:  "replay",
	}, nil
}

// Generate serves the next reply.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	var next MockResponse
	replayed := false
	switch {
	case len(m.script) > 0:
		next = m.script[0]
		m.script = m.script[1:]
	case m.sticky != nil:
		next = *m.sticky
		replayed = true
	default:
		m.mu.Unlock()
		return nil, &ErrProviderUnavailable{Err: fmt.Errorf("%s provider has no replies left", m.model)}
	}
	model := m.model
	m.mu.Unlock()

	if next.Err != nil {
		return nil, next.Err
	}
	if replayed {
		if err := validateResponse(req.Schema, next.Content); err != nil {
			return nil, err
		}
	}
	return &Response{
		Content:    next.Content,
		Usage:      next.Usage,
		Model:      model,
		StopReason: "end",
	}, nil
}

// ModelID returns "mock", or "replay" for a replay provider.
func (m *MockProvider) ModelID() string {
	return m.model
}

// AddResponse appends a reply to the script.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, resp)
}

// CallCount returns how many requests were made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
