package tools

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func floatPtr(f float64) *float64 { return &f }

func testDescriptor(name string, called *int) Descriptor {
	return Descriptor{
		Name:        name,
		Description: "test tool",
		Schema: ArgumentSchema{
			"patient_id": {Type: TypeInt, Required: true, Minimum: floatPtr(1)},
			"detail":     {Type: TypeString},
		},
		Handler: func(ctx context.Context, args Arguments) (string, error) {
			if called != nil {
				*called++
			}
			return "ok", nil
		},
	}
}

func TestRegistry_RegisterAndInvoke(t *testing.T) {
	reg := NewRegistry()
	called := 0
	if err := reg.Register(testDescriptor("lookup_patient", &called)); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	result, err := reg.Invoke(context.Background(), "lookup_patient", `{"patient_id": 42}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" {
		t.Errorf("expected ok, got %q", result)
	}
	if called != 1 {
		t.Errorf("expected handler called once, got %d", called)
	}
}

func TestRegistry_DuplicateName(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(testDescriptor("dup", nil)); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := reg.Register(testDescriptor("dup", nil)); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestRegistry_UnknownTool(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Invoke(context.Background(), "nope", `{}`)
	var unknown *UnknownToolError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownToolError, got %v", err)
	}
	if !IsValidationError(err) {
		t.Error("unknown tool must classify as validation error")
	}
}

func TestRegistry_MissingRequiredFieldNamesIt(t *testing.T) {
	reg := NewRegistry()
	called := 0
	_ = reg.Register(testDescriptor("lookup_patient", &called))

	_, err := reg.Invoke(context.Background(), "lookup_patient", `{"detail": "full"}`)
	var invalid *ArgumentValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ArgumentValidationError, got %v", err)
	}
	if invalid.Field != "patient_id" {
		t.Errorf("expected offending field patient_id, got %q", invalid.Field)
	}
	if !strings.Contains(err.Error(), "patient_id") {
		t.Errorf("error must name the field: %v", err)
	}
	if called != 0 {
		t.Errorf("handler must not run on validation failure, ran %d times", called)
	}
}

func TestRegistry_UndeclaredFieldRejected(t *testing.T) {
	reg := NewRegistry()
	called := 0
	_ = reg.Register(testDescriptor("lookup_patient", &called))

	_, err := reg.Invoke(context.Background(), "lookup_patient", `{"patient_id": 42, "bogus": true}`)
	var invalid *ArgumentValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ArgumentValidationError, got %v", err)
	}
	if invalid.Field != "bogus" {
		t.Errorf("expected offending field bogus, got %q", invalid.Field)
	}
	if called != 0 {
		t.Error("handler must not run")
	}
}

func TestRegistry_InvalidJSON(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(testDescriptor("lookup_patient", nil))

	_, err := reg.Invoke(context.Background(), "lookup_patient", `{patient_id: 42`)
	var invalid *ArgumentValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ArgumentValidationError, got %v", err)
	}
}

func TestRegistry_Definitions(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(testDescriptor("b_tool", nil))
	_ = reg.Register(testDescriptor("a_tool", nil))

	defs := reg.Definitions()
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	if defs[0].Function.Name != "a_tool" || defs[1].Function.Name != "b_tool" {
		t.Errorf("definitions not sorted by name: %s, %s", defs[0].Function.Name, defs[1].Function.Name)
	}

	schema := string(defs[0].Function.Parameters)
	for _, want := range []string{`"type":"object"`, `"patient_id"`, `"required":["patient_id"]`, `"minimum":1`} {
		if !strings.Contains(schema, want) {
			t.Errorf("schema missing %s: %s", want, schema)
		}
	}
}
