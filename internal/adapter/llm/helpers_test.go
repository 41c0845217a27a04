package llm

import (
	"errors"
	"strings"
	"testing"

	"linkedin-assistant/internal/domain"
)

func TestMapHTTPError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
	}{
		{"rate limited", 429, `{"error":"slow down"}`, domain.ErrRateLimit},
		{"server error", 500, "internal", domain.ErrProviderUnreachable},
		{"bad gateway", 502, "bad gateway", domain.ErrProviderUnreachable},
		{"service unavailable", 503, "unavailable", domain.ErrProviderUnreachable},
		{"model not found 404", 404, `{"error":{"code":"model_not_found"}}`, domain.ErrModelUnavailable},
		{"model not found 400", 400, `The model 'gpt-9' does not exist`, domain.ErrModelUnavailable},
		{"plain 404", 404, "no such route", domain.ErrChatFailure},
		{"bad request", 400, "invalid payload", domain.ErrChatFailure},
		{"unauthorized", 401, "bad key", domain.ErrChatFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapHTTPError(tt.status, []byte(tt.body))
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("mapHTTPError(%d) = %v, want %v", tt.status, err, tt.sentinel)
			}
			if !strings.Contains(err.Error(), tt.body) {
				t.Errorf("error %q does not carry body %q", err.Error(), tt.body)
			}
		})
	}
}

func TestIsModelUnavailable(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   bool
	}{
		{"404 with model_not_found", 404, `{"code":"model_not_found"}`, true},
		{"400 with does not exist", 400, "the model does not exist", true},
		{"404 without model keyword", 404, "route does not exist", false},
		{"500 with model keyword", 500, "model not found", false},
		{"400 unrelated", 400, "invalid payload", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isModelUnavailable(tt.status, tt.body); got != tt.want {
				t.Errorf("isModelUnavailable(%d, %q) = %v, want %v", tt.status, tt.body, got, tt.want)
			}
		})
	}
}
