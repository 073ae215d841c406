package tools

import (
	"errors"
	"testing"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		name    string
		ftype   FieldType
		value   any
		want    any
		wantErr bool
	}{
		{"string passes", TypeString, "abc", "abc", false},
		{"string rejects number", TypeString, 1.0, nil, true},
		{"int from whole float", TypeInt, 42.0, int64(42), false},
		{"int rejects fraction", TypeInt, 42.5, nil, true},
		{"int from digit string", TypeInt, "42", int64(42), false},
		{"int rejects word", TypeInt, "forty", nil, true},
		{"float from number", TypeFloat, 7.2, 7.2, false},
		{"float from string", TypeFloat, "7.2", 7.2, false},
		{"bool passes", TypeBool, true, true, false},
		{"bool from string", TypeBool, "true", true, false},
		{"bool rejects number", TypeBool, 1.0, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := coerce(tt.ftype, tt.value)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v (%T), want %v (%T)", got, got, tt.want, tt.want)
			}
		})
	}
}

func TestValidate_Constraints(t *testing.T) {
	schema := ArgumentSchema{
		"age":    {Type: TypeInt, Required: true, Minimum: floatPtr(0), Maximum: floatPtr(130)},
		"smoker": {Type: TypeBool},
		"sex":    {Type: TypeString, Enum: []string{"M", "F"}},
	}

	t.Run("valid", func(t *testing.T) {
		args, err := schema.validate("predict", map[string]any{"age": 55.0, "sex": "F"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if args.Int("age") != 55 {
			t.Errorf("expected age 55, got %d", args.Int("age"))
		}
		if args.String("sex") != "F" {
			t.Errorf("expected sex F, got %q", args.String("sex"))
		}
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := schema.validate("predict", map[string]any{"age": 200.0})
		var invalid *ArgumentValidationError
		if !errors.As(err, &invalid) || invalid.Field != "age" {
			t.Fatalf("expected age range violation, got %v", err)
		}
	})

	t.Run("bad enum", func(t *testing.T) {
		_, err := schema.validate("predict", map[string]any{"age": 55.0, "sex": "X"})
		var invalid *ArgumentValidationError
		if !errors.As(err, &invalid) || invalid.Field != "sex" {
			t.Fatalf("expected enum violation on sex, got %v", err)
		}
	})

	t.Run("optional absent", func(t *testing.T) {
		args, err := schema.validate("predict", map[string]any{"age": 55.0})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := args["smoker"]; ok {
			t.Error("absent optional field must not appear in arguments")
		}
	})
}
