package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/sandevgo/medgraph/internal/core"
	"github.com/sandevgo/medgraph/pkg/log"
)

// Handler receives validated, coerced arguments and returns a result or a
// structured failure.
type Handler func(ctx context.Context, args Arguments) (string, error)

type Descriptor struct {
	Name        string
	Description string
	Schema      ArgumentSchema
	Handler     Handler
}

// Registry holds the callable tools. It is populated once at startup and
// read-only afterwards, so concurrent reads from request goroutines are safe.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Descriptor
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Descriptor),
	}
}

func (r *Registry) Register(d Descriptor) error {
	if d.Name == "" {
		return fmt.Errorf("tool descriptor missing name")
	}
	if d.Handler == nil {
		return fmt.Errorf("tool %q missing handler", d.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[d.Name]; exists {
		return fmt.Errorf("tool %q already registered", d.Name)
	}
	r.tools[d.Name] = d
	return nil
}

func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, 0, len(r.tools))
	for _, d := range r.tools {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Invoke validates the raw JSON arguments against the tool's schema, then
// dispatches. The handler never runs on a validation failure.
func (r *Registry) Invoke(ctx context.Context, name string, rawArgs string) (string, error) {
	r.mu.RLock()
	desc, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return "", &UnknownToolError{Name: name}
	}

	raw := make(map[string]any)
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &raw); err != nil {
			return "", &ArgumentValidationError{Tool: name, Reason: "arguments are not valid JSON"}
		}
	}

	args, err := desc.Schema.validate(name, raw)
	if err != nil {
		return "", err
	}

	log.FromCtx(ctx).Info().Str("tool", name).Msg("executing tool")
	return desc.Handler(ctx, args)
}

// Definitions renders every descriptor as an LLM function definition.
func (r *Registry) Definitions() []core.Tool {
	descriptors := r.List()

	out := make([]core.Tool, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, core.Tool{
			Type: "function",
			Function: core.Function{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  renderJSONSchema(d.Schema),
			},
		})
	}
	return out
}

func renderJSONSchema(schema ArgumentSchema) json.RawMessage {
	properties := make(map[string]any, len(schema))
	var required []string

	names := make([]string, 0, len(schema))
	for name := range schema {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		field := schema[name]
		prop := map[string]any{"type": string(field.Type)}
		if field.Description != "" {
			prop["description"] = field.Description
		}
		if len(field.Enum) > 0 {
			prop["enum"] = field.Enum
		}
		if field.Minimum != nil {
			prop["minimum"] = *field.Minimum
		}
		if field.Maximum != nil {
			prop["maximum"] = *field.Maximum
		}
		properties[name] = prop
		if field.Required {
			required = append(required, name)
		}
	}

	doc := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		doc["required"] = required
	}

	data, _ := json.Marshal(doc)
	return data
}
