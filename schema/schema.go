// Package schema defines the structured-record contracts agents may declare
// for their output. A Schema pairs the raw map representation (serialized
// into prompts and tool declarations) with a compiled JSON Schema validator
// applied to model output before it is written to session state.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema represents a declared output contract. An agent declared to emit a
// Schema must produce a value satisfying it exactly, or the step fails.
type Schema struct {
	raw      map[string]any
	compiled *jsonschema.Schema
}

// Raw returns the underlying map[string]any representation, useful for
// serialization and for describing the expected shape to models.
func (s *Schema) Raw() map[string]any {
	if s == nil {
		return nil
	}
	return s.raw
}

// JSON returns the schema serialized as compact JSON.
func (s *Schema) JSON() string {
	if s == nil {
		return ""
	}
	data, err := json.Marshal(s.raw)
	if err != nil {
		return ""
	}
	return string(data)
}

// Validate validates the given data against the schema.
// Returns nil if valid, or an error describing the validation failure.
func (s *Schema) Validate(data any) error {
	if s == nil || s.compiled == nil {
		return nil
	}
	if err := s.compiled.Validate(data); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

// ValidateJSON parses raw JSON and validates it, returning the decoded value
// on success. Number handling follows the jsonschema decoder so integral
// constraints validate correctly.
func (s *Schema) ValidateJSON(raw string) (any, error) {
	data, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(raw)))
	if err != nil {
		return nil, &ValidationError{Err: fmt.Errorf("output is not valid JSON: %w", err)}
	}
	if err := s.Validate(data); err != nil {
		return nil, err
	}
	return data, nil
}

// ValidationError wraps a JSON Schema validation error with a cleaner message.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema validation failed: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Compile compiles a raw schema map into a Schema with a compiled validator.
// Returns an error if the schema is invalid.
func Compile(raw map[string]any) (*Schema, error) {
	if raw == nil {
		return nil, nil
	}

	schemaJSON, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	schemaData, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", schemaData); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	compiled, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Schema{raw: raw, compiled: compiled}, nil
}

// MustCompile is like Compile but panics on error.
// Use this for schemas defined at init time.
func MustCompile(raw map[string]any) *Schema {
	s, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return s
}

// Builders for the small schema vocabulary the record contracts need.

// Property is a single field definition inside an Object schema.
type Property struct {
	raw map[string]any
}

// Raw returns the property's raw map representation.
func (p *Property) Raw() map[string]any { return p.raw }

// Object builds an object schema from named properties. The listed required
// field names must be present in conforming values; additional fields are
// rejected so model output cannot smuggle undeclared keys.
func Object(props map[string]*Property, required ...string) map[string]any {
	properties := make(map[string]any, len(props))
	for name, p := range props {
		properties[name] = p.raw
	}
	raw := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		reqs := make([]any, len(required))
		for i, r := range required {
			reqs[i] = r
		}
		raw["required"] = reqs
	}
	return raw
}

// String builds a string property with a description.
func String(description string) *Property {
	return &Property{raw: map[string]any{"type": "string", "description": description}}
}

// Bool builds a boolean property with a description.
func Bool(description string) *Property {
	return &Property{raw: map[string]any{"type": "boolean", "description": description}}
}

// Number builds a number property with a description.
func Number(description string) *Property {
	return &Property{raw: map[string]any{"type": "number", "description": description}}
}

// Enum builds a string property constrained to the given values.
func Enum(description string, values ...string) *Property {
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	return &Property{raw: map[string]any{"type": "string", "description": description, "enum": vals}}
}

// ArrayOf builds an array property whose items follow the given object schema.
func ArrayOf(description string, items map[string]any) *Property {
	return &Property{raw: map[string]any{"type": "array", "description": description, "items": items}}
}

// StringArray builds an array-of-strings property.
func StringArray(description string) *Property {
	return &Property{raw: map[string]any{
		"type":        "array",
		"description": description,
		"items":       map[string]any{"type": "string"},
	}}
}

// Nullable marks a property as accepting null in addition to its base type.
// Used for optional record fields.
func Nullable(p *Property) *Property {
	if t, ok := p.raw["type"].(string); ok {
		p.raw["type"] = []any{t, "null"}
	}
	return p
}
