package core

import "context"

// AIProvider is the reasoning collaborator. One call yields one plan: a final
// answer (no tool calls) or proposed tool calls.
type AIProvider interface {
	Chat(ctx context.Context, history []Message, tools []Tool) (Message, error)
}

// ToolInvoker dispatches a named tool with raw JSON arguments.
type ToolInvoker interface {
	Definitions() []Tool
	Invoke(ctx context.Context, name string, args string) (string, error)
}

type MessagesRepository interface {
	AddMessage(ctx context.Context, sessionID string, msg Message) error
	GetMessages(ctx context.Context, sessionID string, limit int) ([]Message, error)
}
