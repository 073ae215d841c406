package tools

import (
	"fmt"
	"math"
	"strconv"
)

type FieldType string

const (
	TypeString FieldType = "string"
	TypeInt    FieldType = "integer"
	TypeFloat  FieldType = "number"
	TypeBool   FieldType = "boolean"
)

type Field struct {
	Type        FieldType
	Required    bool
	Description string
	Enum        []string
	Minimum     *float64
	Maximum     *float64
}

// ArgumentSchema maps argument names to their declared shape.
type ArgumentSchema map[string]Field

// Arguments holds validated, coerced argument values.
type Arguments map[string]any

func (a Arguments) String(name string) string {
	v, _ := a[name].(string)
	return v
}

func (a Arguments) Int(name string) int64 {
	v, _ := a[name].(int64)
	return v
}

func (a Arguments) Float(name string) float64 {
	switch v := a[name].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0
}

func (a Arguments) Bool(name string) bool {
	v, _ := a[name].(bool)
	return v
}

// validate checks raw decoded JSON against the schema and returns coerced
// values. Unknown fields are rejected; the first offense is reported by name.
func (s ArgumentSchema) validate(toolName string, raw map[string]any) (Arguments, error) {
	for name := range raw {
		if _, ok := s[name]; !ok {
			return nil, &ArgumentValidationError{Tool: toolName, Field: name, Reason: "is not declared"}
		}
	}

	out := make(Arguments, len(raw))
	for name, field := range s {
		value, present := raw[name]
		if !present || value == nil {
			if field.Required {
				return nil, &ArgumentValidationError{Tool: toolName, Field: name, Reason: "is required"}
			}
			continue
		}

		coerced, err := coerce(field.Type, value)
		if err != nil {
			return nil, &ArgumentValidationError{Tool: toolName, Field: name, Reason: err.Error()}
		}

		if err := checkConstraints(field, coerced); err != nil {
			return nil, &ArgumentValidationError{Tool: toolName, Field: name, Reason: err.Error()}
		}
		out[name] = coerced
	}
	return out, nil
}

// coerce converts a decoded JSON value to the declared type. JSON numbers
// arrive as float64; strings holding digits are accepted for numeric fields.
func coerce(t FieldType, value any) (any, error) {
	switch t {
	case TypeString:
		if s, ok := value.(string); ok {
			return s, nil
		}
		return nil, fmt.Errorf("must be a string, got %T", value)

	case TypeInt:
		switch v := value.(type) {
		case float64:
			if v != math.Trunc(v) {
				return nil, fmt.Errorf("must be an integer, got %v", v)
			}
			return int64(v), nil
		case string:
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("must be an integer, got %q", v)
			}
			return n, nil
		}
		return nil, fmt.Errorf("must be an integer, got %T", value)

	case TypeFloat:
		switch v := value.(type) {
		case float64:
			return v, nil
		case string:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("must be a number, got %q", v)
			}
			return f, nil
		}
		return nil, fmt.Errorf("must be a number, got %T", value)

	case TypeBool:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("must be a boolean, got %q", v)
			}
			return b, nil
		}
		return nil, fmt.Errorf("must be a boolean, got %T", value)
	}
	return nil, fmt.Errorf("unsupported field type %q", t)
}

func checkConstraints(field Field, value any) error {
	if len(field.Enum) > 0 {
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("enum constraint requires a string value")
		}
		for _, allowed := range field.Enum {
			if s == allowed {
				return nil
			}
		}
		return fmt.Errorf("must be one of %v", field.Enum)
	}

	var num float64
	switch v := value.(type) {
	case int64:
		num = float64(v)
	case float64:
		num = v
	default:
		return nil
	}
	if field.Minimum != nil && num < *field.Minimum {
		return fmt.Errorf("must be >= %v", *field.Minimum)
	}
	if field.Maximum != nil && num > *field.Maximum {
		return fmt.Errorf("must be <= %v", *field.Maximum)
	}
	return nil
}
