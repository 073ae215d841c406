package mcpserver

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/medgraph/internal/tools"
)

func testRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	registry := tools.NewRegistry()
	err := registry.Register(tools.Descriptor{
		Name:        "lookup_patient",
		Description: "Look up a patient by id.",
		Schema: tools.ArgumentSchema{
			"patient_id": {Type: tools.TypeInt, Required: true},
		},
		Handler: func(ctx context.Context, args tools.Arguments) (string, error) {
			return `{"name":"Jane Doe"}`, nil
		},
	})
	require.NoError(t, err)
	return registry
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func TestHandler_InvokesRegistry(t *testing.T) {
	handler := makeHandler(testRegistry(t), "lookup_patient")

	result, err := handler(context.Background(), callRequest("lookup_patient", map[string]any{"patient_id": 42}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	assert.Equal(t, `{"name":"Jane Doe"}`, text.Text)
}

func TestHandler_ValidationErrorAsToolError(t *testing.T) {
	handler := makeHandler(testRegistry(t), "lookup_patient")

	// Missing required argument: surfaced as a tool error, not a transport one.
	result, err := handler(context.Background(), callRequest("lookup_patient", map[string]any{}))
	require.NoError(t, err, "validation failures must not be transport errors")
	assert.True(t, result.IsError)
}

func TestBuildTool_SchemaMapped(t *testing.T) {
	min := float64(1)
	tool := buildTool(tools.Descriptor{
		Name:        "predict_diabetes_risk",
		Description: "Predict diabetes risk.",
		Schema: tools.ArgumentSchema{
			"glucose": {Type: tools.TypeFloat, Required: true, Minimum: &min},
			"smoker":  {Type: tools.TypeBool},
		},
	})

	assert.Equal(t, "predict_diabetes_risk", tool.Name)
	assert.Len(t, tool.InputSchema.Properties, 2)
	assert.Equal(t, []string{"glucose"}, tool.InputSchema.Required)
}
