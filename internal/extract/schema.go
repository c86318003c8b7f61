package extract

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// questionSetSchema describes {"questions": [...]} in the extraction wire
// format. Strict mode closes every object and requires every property, as
// structured-output APIs demand.
func questionSetSchema(strict bool) map[string]any {
	choiceProps := map[string]any{
		"text":        map[string]any{"type": "string"},
		"is_correct":  map[string]any{"type": "boolean"},
		"explanation": map[string]any{"type": "string"},
	}
	choice := map[string]any{
		"type":       "object",
		"properties": choiceProps,
		"required":   []any{"text", "is_correct"},
	}

	question := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question_number": map[string]any{"type": "integer"},
			"question_type":   map[string]any{"type": "string", "enum": []any{"mcq", "true_false"}},
			"question":        map[string]any{"type": "string"},
			"choices":         map[string]any{"type": "array", "items": choice},
		},
		"required": []any{"question_type", "question", "choices"},
	}

	if !strict {
		choiceProps["explanation"] = map[string]any{"type": []any{"string", "null"}}
	}
	if strict {
		choice["required"] = []any{"text", "is_correct", "explanation"}
		choice["additionalProperties"] = false
		question["required"] = []any{"question_number", "question_type", "question", "choices"}
		question["additionalProperties"] = false
	}

	set := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{"type": "array", "items": question},
		},
		"required": []any{"questions"},
	}
	if strict {
		set["additionalProperties"] = false
	}
	return set
}

var (
	payloadSchemaOnce sync.Once
	payloadSchema     *jsonschema.Schema
	payloadSchemaErr  error
)

// validatePayload checks a decoded service response against the lenient
// question-set schema.
func validatePayload(v any) error {
	payloadSchemaOnce.Do(func() {
		payloadSchema, payloadSchemaErr = compileSchema("schema://question-set.json", questionSetSchema(false))
	})
	if payloadSchemaErr != nil {
		return payloadSchemaErr
	}
	return payloadSchema.Validate(v)
}

func compileSchema(url string, def map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	var parsed any
	if err := json.Unmarshal(b, &parsed); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, parsed); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	return c.Compile(url)
}
