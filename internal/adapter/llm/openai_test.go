package llm

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"linkedin-assistant/internal/domain"
	"linkedin-assistant/internal/infra/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func newTestProvider(url string) *OpenAIProvider {
	return NewOpenAIProvider(config.ProviderConfig{
		Name:    "openai",
		BaseURL: url,
		APIKey:  "test-key",
		Model:   "gpt-4o",
	}, testLogger())
}

func TestChatSuccess(t *testing.T) {
	var gotReq openaiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(openaiResponse{
			ID:    "chatcmpl-1",
			Model: "gpt-4o",
			Choices: []openaiChoice{{
				Message:      openaiMessage{Role: "assistant", Content: "hello"},
				FinishReason: "stop",
			}},
			Usage: openaiUsage{PromptTokens: 12, CompletionTokens: 3, TotalTokens: 15},
		})
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	resp, err := p.Chat(context.Background(), domain.ChatRequest{
		Messages: []domain.Message{{Role: domain.RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if resp.Message.Content != "hello" {
		t.Errorf("Content = %q, want %q", resp.Message.Content, "hello")
	}
	if resp.Usage.TotalTokens != 15 {
		t.Errorf("TotalTokens = %d, want 15", resp.Usage.TotalTokens)
	}
	// Default model applied when the request names none.
	if gotReq.Model != "gpt-4o" {
		t.Errorf("request model = %q, want %q", gotReq.Model, "gpt-4o")
	}
}

func TestChatToolCallsDecoded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(openaiResponse{
			Choices: []openaiChoice{{
				Message: openaiMessage{
					Role: "assistant",
					ToolCalls: []openaiToolCall{{
						ID:   "call_abc",
						Type: "function",
						Function: openaiToolCallFunction{
							Name:      "linkedin_highlight_and_extract",
							Arguments: `{"email":"a@b.c"}`,
						},
					}},
				},
				FinishReason: "tool_calls",
			}},
		})
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	resp, err := p.Chat(context.Background(), domain.ChatRequest{
		Messages: []domain.Message{{Role: domain.RoleUser, Content: "extract"}},
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if len(resp.Message.ToolCalls) != 1 {
		t.Fatalf("ToolCalls = %d, want 1", len(resp.Message.ToolCalls))
	}
	tc := resp.Message.ToolCalls[0]
	if tc.ID != "call_abc" {
		t.Errorf("ID = %q", tc.ID)
	}
	if tc.Name != "linkedin_highlight_and_extract" {
		t.Errorf("Name = %q", tc.Name)
	}
	if string(tc.Arguments) != `{"email":"a@b.c"}` {
		t.Errorf("Arguments = %q", tc.Arguments)
	}
}

func TestChatToolsSentWithRequest(t *testing.T) {
	var gotReq openaiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(openaiResponse{
			Choices: []openaiChoice{{Message: openaiMessage{Role: "assistant", Content: "ok"}}},
		})
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	_, err := p.Chat(context.Background(), domain.ChatRequest{
		Messages: []domain.Message{{Role: domain.RoleUser, Content: "hi"}},
		Tools: []domain.ToolSchema{{
			Name:       "extract",
			Parameters: json.RawMessage(`{"type":"object"}`),
		}},
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if len(gotReq.Tools) != 1 || gotReq.Tools[0].Function.Name != "extract" {
		t.Errorf("tools = %+v, want extract", gotReq.Tools)
	}
	if gotReq.ToolChoice != "auto" {
		t.Errorf("tool_choice = %q, want auto", gotReq.ToolChoice)
	}
}

func TestChatErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
	}{
		{"rate limit", 429, `{"error":"rate limited"}`, domain.ErrRateLimit},
		{"server error", 500, "boom", domain.ErrProviderUnreachable},
		{"model missing", 404, `{"error":{"code":"model_not_found"}}`, domain.ErrModelUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := newTestProvider(srv.URL)
			_, err := p.Chat(context.Background(), domain.ChatRequest{
				Messages: []domain.Message{{Role: domain.RoleUser, Content: "hi"}},
			})
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("err = %v, want %v", err, tt.sentinel)
			}
		})
	}
}

func TestChatTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	p := newTestProvider(srv.URL)
	_, err := p.Chat(context.Background(), domain.ChatRequest{
		Messages: []domain.Message{{Role: domain.RoleUser, Content: "hi"}},
	})
	if !errors.Is(err, domain.ErrProviderUnreachable) {
		t.Errorf("err = %v, want ErrProviderUnreachable", err)
	}
}

func TestAssistantToolCallsRoundTrip(t *testing.T) {
	req := domain.ChatRequest{
		Model: "gpt-4o",
		Messages: []domain.Message{
			{Role: domain.RoleUser, Content: "go"},
			{Role: domain.RoleAssistant, ToolCalls: []domain.ToolCall{
				{ID: "call_1", Name: "extract", Arguments: json.RawMessage(`{"a":1}`)},
			}},
			{Role: domain.RoleTool, Name: "extract", ToolCallID: "call_1", Content: `{"ok":true}`},
		},
	}

	oai := toOpenAIRequest(req)
	if len(oai.Messages) != 3 {
		t.Fatalf("messages = %d, want 3", len(oai.Messages))
	}
	asst := oai.Messages[1]
	if len(asst.ToolCalls) != 1 || asst.ToolCalls[0].ID != "call_1" {
		t.Errorf("assistant tool calls = %+v", asst.ToolCalls)
	}
	if asst.ToolCalls[0].Type != "function" {
		t.Errorf("type = %q, want function", asst.ToolCalls[0].Type)
	}
	toolMsg := oai.Messages[2]
	if toolMsg.ToolCallID != "call_1" || toolMsg.Name != "extract" {
		t.Errorf("tool message = %+v", toolMsg)
	}
}
