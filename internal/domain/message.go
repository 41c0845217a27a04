package domain

import "time"

// Role constants for message roles. RoleDeveloper is the system-prompt role
// used by current OpenAI-compatible APIs; RoleSystem is accepted from callers
// as a synonym.
const (
	RoleSystem    = "system"
	RoleDeveloper = "developer"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message represents a single entry in a conversation. A message is created
// once per turn and never mutated after being appended to the sequence.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	Name       string     `json:"name,omitempty"`         // tool messages: capability that produced the result
	ToolCallID string     `json:"tool_call_id,omitempty"` // tool messages: assistant tool call being answered
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`   // assistant messages only
	Timestamp  time.Time  `json:"timestamp,omitempty"`
}

// ChatRequest is sent to an LLM provider.
type ChatRequest struct {
	Model       string       `json:"model"`
	Messages    []Message    `json:"messages"`
	Tools       []ToolSchema `json:"tools,omitempty"`
	MaxTokens   int          `json:"max_tokens,omitempty"`
	Temperature float64      `json:"temperature,omitempty"`
}

// ChatResponse is returned from an LLM provider.
type ChatResponse struct {
	ID        string    `json:"id"`
	Model     string    `json:"model"`
	Message   Message   `json:"message"`
	Usage     Usage     `json:"usage"`
	CreatedAt time.Time `json:"created_at"`
}

// Usage tracks token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResult is the orchestrator's caller-facing outcome: the final message
// of the conversation. RequiresTool is always false on a returned result; a
// turn with pending tool calls never escapes the loop.
type ChatResult struct {
	Message      Message `json:"message"`
	RequiresTool bool    `json:"requires_tool"`
	Usage        Usage   `json:"usage"`
}
