package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"linkedin-assistant/internal/domain"
	"linkedin-assistant/internal/infra/tracer"
)

// maxResponseBody is the maximum response body size we read from the API.
const maxResponseBody = 10 * 1024 * 1024 // 10 MB

// doJSONRequest performs a JSON POST request and returns the response body.
// It handles: create request, set headers, execute, read body (with limit),
// and check HTTP status code. Returns a domain error for non-200 responses;
// transport failures map to ErrProviderUnreachable.
func doJSONRequest(ctx context.Context, client *http.Client, url string, body []byte, headers map[string]string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: http request: %v", domain.ErrProviderUnreachable, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrProviderUnreachable, err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, mapHTTPError(httpResp.StatusCode, respBody)
	}

	return respBody, nil
}

// modelUnavailableKeywords are body fragments that mark a failed request as
// "requested model not served" rather than a generic API error.
var modelUnavailableKeywords = []string{
	"model_not_found",
	"model not found",
	"does not exist",
}

// mapHTTPError maps an HTTP status code + response body to a domain error,
// so the outward classifier can translate provider failures without string
// matching at the boundary.
func mapHTTPError(statusCode int, body []byte) error {
	bodyStr := string(body)
	detail := fmt.Sprintf("API error %d: %s", statusCode, bodyStr)

	if isModelUnavailable(statusCode, bodyStr) {
		return fmt.Errorf("%w: %s", domain.ErrModelUnavailable, detail)
	}

	switch {
	case statusCode == http.StatusTooManyRequests: // 429
		return fmt.Errorf("%w: %s", domain.ErrRateLimit, detail)
	case statusCode >= 500: // 500, 502, 503, etc.
		return fmt.Errorf("%w: %s", domain.ErrProviderUnreachable, detail)
	default:
		return fmt.Errorf("%w: %s", domain.ErrChatFailure, detail)
	}
}

// isModelUnavailable reports whether the failure indicates the requested
// model is not served. OpenAI-compatible APIs return 404 with a
// model_not_found code; some return 400 with a descriptive body.
func isModelUnavailable(statusCode int, body string) bool {
	if statusCode != http.StatusNotFound && statusCode != http.StatusBadRequest {
		return false
	}
	lower := strings.ToLower(body)
	if !strings.Contains(lower, "model") {
		return false
	}
	for _, kw := range modelUnavailableKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// logChatCompleted logs the standard debug message after a successful chat.
func logChatCompleted(logger *slog.Logger, providerName string, result *domain.ChatResponse) {
	logger.Debug("llm chat completed",
		"provider", providerName,
		"model", result.Model,
		"tokens", result.Usage.TotalTokens,
	)
}

// setUsageAttrs adds token usage attributes to a trace span.
func setUsageAttrs(span trace.Span, usage domain.Usage) {
	span.SetAttributes(
		tracer.IntAttr("llm.prompt_tokens", usage.PromptTokens),
		tracer.IntAttr("llm.completion_tokens", usage.CompletionTokens),
	)
}
