package domain

import "context"

// LLMProvider is the interface for the completion service backend.
type LLMProvider interface {
	// Chat sends a request and returns a complete response. The returned
	// message may carry zero or more tool calls.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	// Name returns the provider's identifier (e.g., "openai").
	Name() string
	// Model returns the configured model name.
	Model() string
}
