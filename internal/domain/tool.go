package domain

import (
	"context"
	"encoding/json"
)

// ToolSchema describes a tool for the LLM function-calling protocol.
type ToolSchema struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// ToolCall represents an LLM's request to invoke a tool. Arguments is the
// JSON-encoded argument object, opaque until decoded by the executor.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolExecutionResult is the outcome of one dispatch. Data is a
// JSON-serializable payload present only on success.
type ToolExecutionResult struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Tool is the interface every registered capability implements.
type Tool interface {
	Name() string
	Description() string
	Schema() ToolSchema
	Execute(ctx context.Context, params json.RawMessage) (*ToolExecutionResult, error)
}

// ToolExecutor dispatches a single tool call. Implementations never
// propagate failures: unknown names, malformed arguments and capability
// errors all come back as a result with Success=false.
type ToolExecutor interface {
	Execute(ctx context.Context, call ToolCall) ToolExecutionResult
	Schemas() []ToolSchema
}
