package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/extraction-bench/internal/entity"
)

// BuildResponseJSONSchema returns the JSON Schema the decoded model response must satisfy.
// Scalar types are loose: amounts may be numbers or strings and any field may be null.
func BuildResponseJSONSchema() map[string]any {
	scalar := map[string]any{"type": []string{"string", "number", "null"}}
	text := map[string]any{"type": []string{"string", "null"}}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			entity.FieldCompanyName:  text,
			entity.FieldDocumentDate: text,
			entity.FieldTotalAmount:  scalar,
			entity.FieldCurrency:     text,
			entity.FieldCategory:     text,
			entity.FieldLineItems: map[string]any{
				"type":  []string{"array", "null"},
				"items": map[string]any{"type": []string{"object", "string", "number", "null"}},
			},
			entity.FieldAdditionalMetrics: map[string]any{"type": []string{"object", "null"}},
			"confidence":                  map[string]any{"type": []string{"number", "null"}, "minimum": 0.0, "maximum": 1.0},
		},
	}
}

var (
	responseSchemaOnce sync.Once
	responseSchema     *jsonschema.Schema
	responseSchemaErr  error
)

func compiledResponseSchema() (*jsonschema.Schema, error) {
	responseSchemaOnce.Do(func() {
		responseSchema, responseSchemaErr = compileSchema(BuildResponseJSONSchema())
	})
	return responseSchema, responseSchemaErr
}

func compileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("response.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("response.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// ValidateResponse checks a decoded model response against the response schema.
func ValidateResponse(doc map[string]any) error {
	schema, err := compiledResponseSchema()
	if err != nil {
		return err
	}
	// the validator expects plain JSON values, so round-trip through encoding/json
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
