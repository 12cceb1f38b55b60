package util

import (
	"fmt"
	"reflect"
	"strings"
)

// ValidationError reports a single parameter that failed schema validation.
type ValidationError struct {
	Field   string `json:"field"`
	Value   any    `json:"value,omitempty"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
}

// ValidateParameters validates an argument map against a minimal JSON-schema
// shaped map ("type", "properties", "required"). Required fields must be
// present; provided fields must match their declared type (float64 values are
// accepted for "integer" when they carry no fractional part, matching how
// JSON decoding surfaces numbers). Extra fields are allowed.
func ValidateParameters(params map[string]any, schema map[string]any) error {
	for _, field := range RequiredParams(schema) {
		if _, exists := params[field]; !exists {
			return &ValidationError{
				Field:   field,
				Message: "required field is missing",
			}
		}
	}

	properties := propertyMap(schema)
	for field, value := range params {
		propSchema, exists := properties[field]
		if !exists {
			continue
		}
		expectedType, _ := propSchema["type"].(string)
		if !isValidType(value, expectedType) {
			return &ValidationError{
				Field:   field,
				Value:   value,
				Message: fmt.Sprintf("expected type %s, got %T", expectedType, value),
			}
		}
	}

	return nil
}

// RequiredParams returns the schema's required field names. Both []any (the
// shape JSON decoding produces) and []string (the shape hand-written schemas
// use) are understood.
func RequiredParams(schema map[string]any) []string {
	switch req := schema["required"].(type) {
	case []string:
		return req
	case []any:
		out := make([]string, 0, len(req))
		for _, r := range req {
			if name, ok := r.(string); ok {
				out = append(out, name)
			}
		}
		return out
	default:
		return nil
	}
}

// SingleRequiredParam reports the schema's sole required parameter name, if
// the schema declares exactly one. Callers use it to re-key a positional
// argument to the parameter the tool actually expects. When nothing is
// required but exactly one property is declared, that property is used.
func SingleRequiredParam(schema map[string]any) (string, bool) {
	required := RequiredParams(schema)
	if len(required) == 1 {
		return required[0], true
	}
	if len(required) == 0 {
		properties := propertyMap(schema)
		if len(properties) == 1 {
			for name := range properties {
				return name, true
			}
		}
	}
	return "", false
}

// CreateSchema derives a minimal JSON schema from a struct's exported fields,
// honoring `json` tags for names and `description` tags for documentation.
// Fields without omitempty (and non-pointers) become required.
func CreateSchema(structType any) map[string]any {
	t := reflect.TypeOf(structType)
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}

	properties := make(map[string]any)
	var required []string

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name := field.Name
		if jsonTag := field.Tag.Get("json"); jsonTag != "" {
			parts := strings.Split(jsonTag, ",")
			if parts[0] == "-" {
				continue
			}
			if parts[0] != "" {
				name = parts[0]
			}
		}

		fieldSchema := map[string]any{"type": jsonType(field.Type)}
		if description := field.Tag.Get("description"); description != "" {
			fieldSchema["description"] = description
		}
		properties[name] = fieldSchema

		if !hasOmitEmpty(field.Tag.Get("json")) && field.Type.Kind() != reflect.Ptr {
			required = append(required, name)
		}
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func propertyMap(schema map[string]any) map[string]map[string]any {
	out := make(map[string]map[string]any)
	properties, _ := schema["properties"].(map[string]any)
	for name, prop := range properties {
		if propSchema, ok := prop.(map[string]any); ok {
			out[name] = propSchema
		}
	}
	return out
}

func jsonType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	case reflect.Ptr:
		return jsonType(t.Elem())
	default:
		return "string"
	}
}

func hasOmitEmpty(tag string) bool {
	parts := strings.Split(tag, ",")
	for _, part := range parts[1:] {
		if strings.TrimSpace(part) == "omitempty" {
			return true
		}
	}
	return false
}

func isValidType(value any, expectedType string) bool {
	if value == nil {
		return true
	}

	switch expectedType {
	case "string":
		_, ok := value.(string)
		return ok
	case "integer":
		switch v := value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		case float64: // JSON decoding surfaces numbers as float64
			return v == float64(int64(v))
		}
		return false
	case "number":
		switch value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64,
			float32, float64:
			return true
		}
		return false
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	case "object":
		_, ok := value.(map[string]any)
		return ok
	default:
		return true
	}
}
