package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() *Schema {
	return &Schema{
		Name:        "choice",
		Description: "One answer choice",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text":        map[string]any{"type": "string"},
				"is_correct":  map[string]any{"type": "boolean"},
				"explanation": map[string]any{"type": "string"},
				"kind":        map[string]any{"type": "string", "enum": []any{"mcq", "true_false"}},
			},
			"required": []any{"text", "is_correct"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"text":"Paris","is_correct":true,"explanation":"Capital."}`, false},
		{"optional omitted", `{"text":"Lyon","is_correct":false}`, false},
		{"missing required", `{"text":"Lyon"}`, true},
		{"wrong type", `{"text":"Lyon","is_correct":"no"}`, true},
		{"bad enum", `{"text":"Lyon","is_correct":false,"kind":"essay"}`, true},
		{"malformed", `{text}`, true},
		{"empty", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(testSchema(), json.RawMessage(tt.raw))
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			var invalid *ErrInvalidResponse
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.raw, string(invalid.Content))
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	assert.NoError(t, validateResponse(nil, json.RawMessage(`anything`)))
}

func TestValidateResponse_SameNameDifferentDefinition(t *testing.T) {
	loose := &Schema{Name: "question-set", Definition: map[string]any{"type": "object"}}
	strict := &Schema{Name: "question-set", Definition: map[string]any{
		"type":     "object",
		"required": []any{"questions"},
	}}
	raw := json.RawMessage(`{}`)

	require.NoError(t, validateResponse(loose, raw))
	require.Error(t, validateResponse(strict, raw))
	require.NoError(t, validateResponse(loose, raw))
}

func TestValidateResponse_NestedArrays(t *testing.T) {
	schema := &Schema{
		Name: "question-set-lite",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"questions": map[string]any{
					"type":  "array",
					"items": testSchema().Definition,
				},
			},
			"required": []any{"questions"},
		},
	}

	require.NoError(t, validateResponse(schema, json.RawMessage(`{"questions":[{"text":"True","is_correct":true}]}`)))
	require.Error(t, validateResponse(schema, json.RawMessage(`{"questions":[{"text":"True"}]}`)))
}
