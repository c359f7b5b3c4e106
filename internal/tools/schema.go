// ABOUTME: Structural validation of tool arguments against input schemas.
// ABOUTME: Covers the JSON Schema subset used by the tool catalogue.

package tools

import (
	"encoding/json"
	"fmt"
)

// SchemaError describes why arguments failed structural validation.
// Field names the offending argument so callers can report it.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return "invalid arguments: " + e.Reason
	}
	return fmt.Sprintf("invalid argument %q: %s", e.Field, e.Reason)
}

// inputSchema is the subset of JSON Schema the tool catalogue uses:
// a top-level object with typed properties, required fields, and enums.
type inputSchema struct {
	Type       string                    `json:"type"`
	Properties map[string]propertySchema `json:"properties"`
	Required   []string                  `json:"required"`
}

type propertySchema struct {
	Type string   `json:"type"`
	Enum []string `json:"enum"`
}

// ValidateArgs checks args against schema. A nil/empty args value is treated
// as an empty object. Unknown properties are permitted.
func ValidateArgs(schema, args json.RawMessage) error {
	var s inputSchema
	if err := json.Unmarshal(schema, &s); err != nil {
		return fmt.Errorf("parsing input schema: %w", err)
	}

	if len(args) == 0 || string(args) == "null" {
		args = json.RawMessage("{}")
	}

	var values map[string]json.RawMessage
	if err := json.Unmarshal(args, &values); err != nil {
		return &SchemaError{Reason: "arguments must be a JSON object"}
	}

	for _, name := range s.Required {
		if _, present := values[name]; !present {
			return &SchemaError{Field: name, Reason: "required"}
		}
	}

	for name, raw := range values {
		prop, known := s.Properties[name]
		if !known {
			continue
		}
		if err := checkProperty(name, prop, raw); err != nil {
			return err
		}
	}

	return nil
}

func checkProperty(name string, prop propertySchema, raw json.RawMessage) error {
	switch prop.Type {
	case "string":
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return &SchemaError{Field: name, Reason: "must be a string"}
		}
		if len(prop.Enum) > 0 && !inEnum(v, prop.Enum) {
			return &SchemaError{Field: name, Reason: fmt.Sprintf("must be one of %v", prop.Enum)}
		}
	case "integer":
		var v int64
		if err := json.Unmarshal(raw, &v); err != nil {
			return &SchemaError{Field: name, Reason: "must be an integer"}
		}
	case "number":
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return &SchemaError{Field: name, Reason: "must be a number"}
		}
	case "boolean":
		var v bool
		if err := json.Unmarshal(raw, &v); err != nil {
			return &SchemaError{Field: name, Reason: "must be a boolean"}
		}
	case "array":
		var v []json.RawMessage
		if err := json.Unmarshal(raw, &v); err != nil {
			return &SchemaError{Field: name, Reason: "must be an array"}
		}
	case "object":
		var v map[string]json.RawMessage
		if err := json.Unmarshal(raw, &v); err != nil {
			return &SchemaError{Field: name, Reason: "must be an object"}
		}
	}
	return nil
}

func inEnum(v string, enum []string) bool {
	for _, e := range enum {
		if v == e {
			return true
		}
	}
	return false
}
