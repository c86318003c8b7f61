package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anthropicMessage(text, stop string) map[string]any {
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"model":       "claude-sonnet-4-5-20250929",
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
	}
}

func anthropicServer(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	p, err := NewAnthropicProvider(VendorConfig{APIKey: "test-key", Model: "claude-sonnet", BaseURL: srv.URL})
	require.NoError(t, err)
	return p
}

func TestNewAnthropicProvider(t *testing.T) {
	_, err := NewAnthropicProvider(VendorConfig{Model: "claude-sonnet"})
	require.Error(t, err)

	p, err := NewAnthropicProvider(VendorConfig{APIKey: "k", Model: "claude-haiku"})
	require.NoError(t, err)
	assert.Equal(t, "claude-haiku-4-5-20251001", p.ModelID())

	p, err = NewAnthropicProvider(VendorConfig{APIKey: "k", Model: "claude-opus-4-1"})
	require.NoError(t, err)
	assert.Equal(t, "claude-opus-4-1", p.ModelID())
}

func TestAnthropicProvider_ReadsPDFAndValidates(t *testing.T) {
	var body map[string]any
	p := anthropicServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicMessage(`{"questions":[]}`, "end_turn"))
	})

	resp, err := p.Generate(context.Background(), Request{
		System:    "You extract quiz questions.",
		Messages:  []Message{{Role: RoleUser, Content: "Extract the questions."}},
		Documents: []Document{{Name: "quiz.pdf", MediaType: "application/pdf", Data: []byte("%PDF-1.4")}},
		Schema:    &Schema{Name: "question-set", Definition: questionSetDef},
		MaxTokens: 256,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"questions":[]}`, string(resp.Content))
	assert.Equal(t, "claude-sonnet-4-5-20250929", resp.Model)
	assert.Equal(t, Usage{InputTokens: 50, OutputTokens: 30, TotalTokens: 80}, resp.Usage)
	assert.Equal(t, "end", resp.StopReason)

	msgs := body["messages"].([]any)
	require.Len(t, msgs, 1)
	blocks := msgs[0].(map[string]any)["content"].([]any)
	require.Len(t, blocks, 2)
	doc := blocks[0].(map[string]any)
	assert.Equal(t, "document", doc["type"])
	src := doc["source"].(map[string]any)
	assert.Equal(t, "application/pdf", src["media_type"])
	assert.Equal(t, "JVBERi0xLjQ=", src["data"])
	assert.Equal(t, "text", blocks[1].(map[string]any)["type"])
}

func TestAnthropicProvider_Failures(t *testing.T) {
	pdf := []Document{{Name: "big.pdf", MediaType: "application/pdf", Data: make([]byte, 64)}}
	tests := []struct {
		name   string
		status int
		header http.Header
		body   any
		check  func(t *testing.T, err error)
	}{
		{
			name:   "rate limit with hint",
			status: http.StatusTooManyRequests,
			header: http.Header{"Retry-After": {"7"}},
			body:   map[string]any{"type": "error", "error": map[string]any{"type": "rate_limit_error", "message": "slow down"}},
			check: func(t *testing.T, err error) {
				var rl *ErrRateLimit
				require.ErrorAs(t, err, &rl)
				assert.Equal(t, 7*time.Second, rl.RetryAfter)
			},
		},
		{
			name:   "overloaded",
			status: http.StatusInternalServerError,
			body:   map[string]any{"type": "error", "error": map[string]any{"type": "api_error", "message": "boom"}},
			check: func(t *testing.T, err error) {
				var unavailable *ErrProviderUnavailable
				require.ErrorAs(t, err, &unavailable)
			},
		},
		{
			name:   "document too large",
			status: http.StatusRequestEntityTooLarge,
			body:   map[string]any{"type": "error", "error": map[string]any{"type": "request_too_large", "message": "too big"}},
			check: func(t *testing.T, err error) {
				var unsupported *ErrUnsupportedDocument
				require.ErrorAs(t, err, &unsupported)
				assert.Equal(t, "anthropic", unsupported.Provider)
				assert.Contains(t, unsupported.Error(), "64 bytes")
			},
		},
		{
			name:   "truncated",
			status: http.StatusOK,
			body:   anthropicMessage(`{"questions":[{"question_num`, "max_tokens"),
			check: func(t *testing.T, err error) {
				var mt *ErrMaxTokensExceeded
				require.ErrorAs(t, err, &mt)
				assert.Contains(t, string(mt.Content), "question_num")
			},
		},
		{
			name:   "off schema",
			status: http.StatusOK,
			body:   anthropicMessage(`{"items":[]}`, "end_turn"),
			check: func(t *testing.T, err error) {
				var invalid *ErrInvalidResponse
				require.ErrorAs(t, err, &invalid)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			p := anthropicServer(t, func(w http.ResponseWriter, r *http.Request) {
				calls++
				for k, v := range tt.header {
					w.Header()[k] = v
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(tt.body)
			})
			_, err := p.Generate(context.Background(), Request{
				Messages:  []Message{{Role: RoleUser, Content: "Extract."}},
				Documents: pdf,
				Schema:    &Schema{Name: "question-set", Definition: questionSetDef},
				MaxTokens: 100,
			})
			require.Error(t, err)
			tt.check(t, err)
			assert.Equal(t, 1, calls, "SDK retries should be off")
		})
	}
}

func TestAnthropicMessages_DocumentsOnFirstUserTurn(t *testing.T) {
	out := anthropicMessages(
		[]Message{
			{Role: RoleUser, Content: "Extract."},
			{Role: RoleAssistant, Content: "{}"},
			{Role: RoleUser, Content: "Again."},
		},
		[]Document{{Name: "notes.txt", MediaType: "text/plain", Data: []byte("Q1")}},
	)
	require.Len(t, out, 3)
	assert.Len(t, out[0].Content, 2)
	assert.Len(t, out[1].Content, 1)
	assert.Len(t, out[2].Content, 1)
}
