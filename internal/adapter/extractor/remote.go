package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"linkedin-assistant/internal/domain"
	"linkedin-assistant/internal/infra/config"
)

const maxResponseBody = 10 * 1024 * 1024 // 10 MB

// RemoteExtractor calls the out-of-process extraction helper over HTTP.
// The helper owns browser automation and login; this client only ships
// credentials to it and decodes the structured profile it returns.
type RemoteExtractor struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewRemoteExtractor creates a client for the extraction helper. Extraction
// drives a real browser on the helper side, so the timeout default is
// generous.
func NewRemoteExtractor(cfg config.ExtractorConfig, logger *slog.Logger) *RemoteExtractor {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Minute
	}
	return &RemoteExtractor{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type extractRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	ProfileURL string `json:"profile_url"`
}

type extractResponse struct {
	Profile *domain.Profile `json:"profile"`
	Error   string          `json:"error,omitempty"`
}

// Extract implements domain.ProfileExtractor.
func (e *RemoteExtractor) Extract(ctx context.Context, email, password, profileURL string) (*domain.Profile, error) {
	if e.baseURL == "" {
		return nil, domain.NewDomainError("RemoteExtractor.Extract", domain.ErrExtractorFailure,
			"extractor base URL is not configured")
	}

	body, err := json.Marshal(extractRequest{
		Email:      email,
		Password:   password,
		ProfileURL: profileURL,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/extract", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractorFailure, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrExtractorFailure, err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: helper returned %d: %s",
			domain.ErrExtractorFailure, httpResp.StatusCode, truncate(respBody, 512))
	}

	var resp extractResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: unmarshal response: %v", domain.ErrExtractorFailure, err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrExtractorFailure, resp.Error)
	}
	if resp.Profile == nil {
		return nil, fmt.Errorf("%w: helper returned no profile", domain.ErrExtractorFailure)
	}

	e.logger.Debug("profile extracted", "profile_url", profileURL, "name", resp.Profile.Name)
	return resp.Profile, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

var _ domain.ProfileExtractor = (*RemoteExtractor)(nil)
