package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"invoicedesk/internal/domain"
)

const schemaResource = "ocr_response.json"

// responseSchema describes an acceptable /ocr body: a flat object whose recognized
// keys hold scalars. Unrecognized keys may hold anything.
func responseSchema() map[string]any {
	props := make(map[string]any, len(domain.KnownRawKeys))
	for _, k := range domain.KnownRawKeys {
		props[string(k)] = map[string]any{"type": []string{"string", "number", "null"}}
	}
	return map[string]any{
		"$schema":    "http://json-schema.org/draft-07/schema#",
		"type":       "object",
		"properties": props,
	}
}

func compileSchema() (*jsonschema.Schema, error) {
	b, err := json.Marshal(responseSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaResource, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(schemaResource)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

func validateBody(schema *jsonschema.Schema, body []byte) error {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("response does not match schema: %w", err)
	}
	return nil
}
