package schema

import (
	"encoding/json"
	"fmt"
)

// ValidationError reports the first descriptor field that a payload fails to
// satisfy: either missing from the payload or carrying a value of the wrong
// type.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

// Extract validates a payload against the descriptor and returns the typed
// value.
//
// The payload may be a JSON text (string or []byte) or an already-decoded
// map[string]any. Fields are checked in descriptor order and the first
// failure is returned as a *ValidationError. Field names are case-sensitive
// and must match exactly. Payload fields not present in the descriptor are
// ignored, never an error.
//
// The returned map holds normalized values: string, float64, bool, or
// []string according to the field's type tag.
func Extract(payload any, d *Descriptor) (map[string]any, error) {
	obj, err := decodePayload(payload)
	if err != nil {
		return nil, err
	}

	out := make(map[string]any, d.Len())
	for _, f := range d.Fields() {
		raw, present := obj[f.Name]
		if !present {
			return nil, &ValidationError{Field: f.Name, Reason: "missing"}
		}
		v, err := coerce(raw, f.Type)
		if err != nil {
			return nil, &ValidationError{Field: f.Name, Reason: err.Error()}
		}
		out[f.Name] = v
	}
	return out, nil
}

// decodePayload turns the accepted payload forms into a map[string]any.
func decodePayload(payload any) (map[string]any, error) {
	switch p := payload.(type) {
	case map[string]any:
		return p, nil
	case json.RawMessage:
		return decodeJSONObject([]byte(p))
	case []byte:
		return decodeJSONObject(p)
	case string:
		return decodeJSONObject([]byte(p))
	default:
		return nil, &ValidationError{Field: "", Reason: fmt.Sprintf("unsupported payload type %T", payload)}
	}
}

func decodeJSONObject(b []byte) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil, &ValidationError{Field: "", Reason: fmt.Sprintf("payload is not a JSON object: %v", err)}
	}
	return obj, nil
}

// coerce checks the decoded value against the field's type tag and returns
// the normalized value.
func coerce(raw any, typ FieldType) (any, error) {
	switch typ {
	case TypeString:
		s, ok := raw.(string)
		if !ok {
			return nil, typeMismatch("string", raw)
		}
		return s, nil

	case TypeNumber:
		switch n := raw.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		case json.Number:
			f, err := n.Float64()
			if err != nil {
				return nil, typeMismatch("number", raw)
			}
			return f, nil
		}
		return nil, typeMismatch("number", raw)

	case TypeBoolean:
		b, ok := raw.(bool)
		if !ok {
			return nil, typeMismatch("boolean", raw)
		}
		return b, nil

	case TypeStringList:
		switch list := raw.(type) {
		case []string:
			out := make([]string, len(list))
			copy(out, list)
			return out, nil
		case []any:
			out := make([]string, 0, len(list))
			for i, item := range list {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("expected string[], element %d is %s", i, typeName(item))
				}
				out = append(out, s)
			}
			return out, nil
		}
		return nil, typeMismatch("string[]", raw)
	}

	return nil, fmt.Errorf("unsupported type tag %q", typ)
}

func typeMismatch(want string, got any) error {
	return fmt.Errorf("expected %s, got %s", want, typeName(got))
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, int, int64, json.Number:
		return "number"
	case []any, []string:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
