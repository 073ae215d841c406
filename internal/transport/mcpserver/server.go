package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sandevgo/medgraph/internal/core"
	"github.com/sandevgo/medgraph/internal/tools"
	"github.com/sandevgo/medgraph/pkg/log"
)

// Server exposes the tool registry to MCP clients over stdio, so the same
// tools the agent plans with are callable from external hosts.
type Server struct {
	mcp      *server.MCPServer
	registry *tools.Registry
}

func NewServer(registry *tools.Registry) *Server {
	s := server.NewMCPServer(core.AppName, "0.1.0", server.WithToolCapabilities(false))

	for _, d := range registry.List() {
		s.AddTool(buildTool(d), makeHandler(registry, d.Name))
	}

	return &Server{mcp: s, registry: registry}
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("mcp stdio server listening")
	err := server.ServeStdio(s.mcp)
	if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	// Stdio transport ends when the client closes stdin.
	return nil
}

func buildTool(d tools.Descriptor) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(d.Description)}
	for name, field := range d.Schema {
		opts = append(opts, propertyOption(name, field))
	}
	return mcp.NewTool(d.Name, opts...)
}

func propertyOption(name string, field tools.Field) mcp.ToolOption {
	propOpts := []mcp.PropertyOption{mcp.Description(field.Description)}
	if field.Required {
		propOpts = append(propOpts, mcp.Required())
	}
	if len(field.Enum) > 0 {
		propOpts = append(propOpts, mcp.Enum(field.Enum...))
	}
	if field.Minimum != nil {
		propOpts = append(propOpts, mcp.Min(*field.Minimum))
	}
	if field.Maximum != nil {
		propOpts = append(propOpts, mcp.Max(*field.Maximum))
	}

	switch field.Type {
	case tools.TypeBool:
		return mcp.WithBoolean(name, propOpts...)
	case tools.TypeInt, tools.TypeFloat:
		return mcp.WithNumber(name, propOpts...)
	default:
		return mcp.WithString(name, propOpts...)
	}
}

func makeHandler(registry *tools.Registry, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := json.Marshal(req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError("invalid arguments: " + err.Error()), nil
		}

		output, err := registry.Invoke(ctx, name, string(raw))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(output), nil
	}
}
