package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"linkedin-assistant/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// stubTool is a minimal tool with a configurable execute function.
type stubTool struct {
	name    string
	schema  string
	execute func(ctx context.Context, params json.RawMessage) (*domain.ToolExecutionResult, error)
}

func (s *stubTool) Name() string        { return s.name }
func (s *stubTool) Description() string { return "stub" }
func (s *stubTool) Schema() domain.ToolSchema {
	return domain.ToolSchema{Name: s.name, Description: "stub", Parameters: json.RawMessage(s.schema)}
}

func (s *stubTool) Execute(ctx context.Context, params json.RawMessage) (*domain.ToolExecutionResult, error) {
	if s.execute != nil {
		return s.execute(ctx, params)
	}
	return &domain.ToolExecutionResult{Success: true}, nil
}

func TestRegistryRegisterDuplicate(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.Register(&stubTool{name: "a"}); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if err := r.Register(&stubTool{name: "a"}); err == nil {
		t.Fatal("duplicate Register succeeded")
	}
}

func TestRegistryGetUnknown(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.Get("missing")
	if !errors.Is(err, domain.ErrToolNotFound) {
		t.Errorf("err = %v, want ErrToolNotFound", err)
	}
}

func TestRegistrySchemas(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&stubTool{name: "a", schema: `{"type":"object"}`})
	r.Register(&stubTool{name: "b", schema: `{"type":"object"}`})

	schemas := r.Schemas()
	if len(schemas) != 2 {
		t.Errorf("schemas = %d, want 2", len(schemas))
	}
}

func TestExecutorUnknownTool(t *testing.T) {
	e := NewExecutor(NewRegistry(nil), testLogger())
	result := e.Execute(context.Background(), domain.ToolCall{ID: "c1", Name: "nope"})
	if result.Success {
		t.Fatal("Success = true, want false")
	}
	if result.Error != "Unknown tool: nope" {
		t.Errorf("Error = %q, want %q", result.Error, "Unknown tool: nope")
	}
}

func TestExecutorAbsorbsToolError(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&stubTool{
		name: "broken",
		execute: func(context.Context, json.RawMessage) (*domain.ToolExecutionResult, error) {
			return nil, fmt.Errorf("session expired")
		},
	})
	e := NewExecutor(r, testLogger())

	result := e.Execute(context.Background(), domain.ToolCall{ID: "c1", Name: "broken", Arguments: json.RawMessage(`{}`)})
	if result.Success {
		t.Fatal("Success = true, want false")
	}
	if result.Error != "session expired" {
		t.Errorf("Error = %q", result.Error)
	}
}

func TestExecutorSuccess(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&stubTool{
		name: "ok",
		execute: func(context.Context, json.RawMessage) (*domain.ToolExecutionResult, error) {
			return &domain.ToolExecutionResult{Success: true, Data: map[string]int{"n": 1}}, nil
		},
	})
	e := NewExecutor(r, testLogger())

	result := e.Execute(context.Background(), domain.ToolCall{ID: "c1", Name: "ok", Arguments: json.RawMessage(`{}`)})
	if !result.Success {
		t.Fatalf("Success = false: %s", result.Error)
	}
	if result.Data == nil {
		t.Error("Data = nil")
	}
}

func TestRegistrySchemaValidationWrapping(t *testing.T) {
	r := NewRegistry(testLogger())
	r.Register(&stubTool{
		name: "strict",
		schema: `{
			"type": "object",
			"properties": {"n": {"type": "integer"}},
			"required": ["n"],
			"additionalProperties": false
		}`,
	})
	e := NewExecutor(r, testLogger())

	// Valid arguments pass through.
	result := e.Execute(context.Background(), domain.ToolCall{Name: "strict", Arguments: json.RawMessage(`{"n":1}`)})
	if !result.Success {
		t.Errorf("valid args rejected: %s", result.Error)
	}

	// Missing required field is rejected before the tool runs.
	result = e.Execute(context.Background(), domain.ToolCall{Name: "strict", Arguments: json.RawMessage(`{}`)})
	if result.Success {
		t.Error("invalid args accepted")
	}
	if !strings.Contains(result.Error, "schema validation failed") {
		t.Errorf("Error = %q, want schema validation diagnostic", result.Error)
	}

	// Malformed JSON is rejected with the decode error.
	result = e.Execute(context.Background(), domain.ToolCall{Name: "strict", Arguments: json.RawMessage(`{not json`)})
	if result.Success {
		t.Error("malformed args accepted")
	}
	if !strings.Contains(result.Error, "invalid JSON") {
		t.Errorf("Error = %q, want invalid JSON diagnostic", result.Error)
	}
}
