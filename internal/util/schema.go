package util

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/hupe1980/racetrack/core"
)

// CreateSchema derives a JSON schema object for tool arguments from a struct.
// Field names follow json tags; a `description` tag is copied verbatim and an
// `enum` tag (comma separated integers) lists the allowed integer values.
// Fields without omitempty that are not pointers are required.
func CreateSchema(args any) map[string]any {
	properties := map[string]any{}
	schema := map[string]any{"type": "object", "properties": properties}

	t := reflect.TypeOf(args)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return schema
	}

	var required []string
	for _, field := range reflect.VisibleFields(t) {
		name, optional, ok := jsonName(field)
		if !ok {
			continue
		}
		properties[name] = property(field)
		if !optional {
			required = append(required, name)
		}
	}

	if len(required) > 0 {
		schema["required"] = required
	}

	return schema
}

// jsonName reports the encoded name of a field and whether it may be absent.
func jsonName(field reflect.StructField) (name string, optional, ok bool) {
	if !field.IsExported() || field.Anonymous {
		return "", false, false
	}

	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false, false
	}

	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = field.Name
	}

	optional = field.Type.Kind() == reflect.Ptr
	for _, o := range strings.Split(opts, ",") {
		if strings.TrimSpace(o) == "omitempty" {
			optional = true
		}
	}

	return name, optional, true
}

func property(field reflect.StructField) map[string]any {
	p := map[string]any{"type": jsonType(field.Type)}

	if d := field.Tag.Get("description"); d != "" {
		p["description"] = d
	}

	if e := field.Tag.Get("enum"); e != "" {
		values := []any{}
		for _, s := range strings.Split(e, ",") {
			if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
				values = append(values, n)
			}
		}
		p["enum"] = values
	}

	return p
}

func jsonType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Ptr:
		return jsonType(t.Elem())
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
	default:
		return "string"
	}
}

// ValidateParameters checks decoded tool arguments against a schema built by
// CreateSchema: required fields must be present and known fields must carry
// the declared JSON type. Unknown fields are ignored. Enum bounds are not
// enforced here; range checks belong to the consumer of the arguments.
func ValidateParameters(params map[string]any, schema map[string]any) error {
	for _, name := range requiredFields(schema) {
		if _, ok := params[name]; !ok {
			return &core.ValidationError{Field: name, Message: "required field is missing"}
		}
	}

	properties, _ := schema["properties"].(map[string]any)
	for name, value := range params {
		p, ok := properties[name].(map[string]any)
		if !ok {
			continue
		}

		want, _ := p["type"].(string)
		if !hasType(value, want) {
			return &core.ValidationError{
				Field:   name,
				Value:   value,
				Message: fmt.Sprintf("expected type %s, got %T", want, value),
			}
		}
	}

	return nil
}

// requiredFields accepts []string (as built here) and []any (after a JSON
// round trip).
func requiredFields(schema map[string]any) []string {
	switch req := schema["required"].(type) {
	case []string:
		return req
	case []any:
		names := make([]string, 0, len(req))
		for _, r := range req {
			if s, ok := r.(string); ok {
				names = append(names, s)
			}
		}
		return names
	}
	return nil
}

func hasType(value any, want string) bool {
	if value == nil {
		return true
	}

	switch want {
	case "integer":
		switch v := value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		case float64:
			// encoding/json decodes every number as float64
			return v == float64(int64(v))
		}
		return false
	case "number":
		k := reflect.TypeOf(value).Kind()
		return k >= reflect.Int && k <= reflect.Float64
	case "string":
		_, ok := value.(string)
		return ok
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	case "object":
		_, ok := value.(map[string]any)
		return ok
	}
	return true
}
