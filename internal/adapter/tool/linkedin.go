package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"linkedin-assistant/internal/domain"
	"linkedin-assistant/internal/infra/tracer"
)

const extractToolName = "linkedin_highlight_and_extract"

// extractSchema follows the OpenAI structured-outputs conventions: every
// property required, additionalProperties false.
const extractSchema = `{
	"type": "object",
	"properties": {
		"email": {
			"type": "string",
			"description": "LinkedIn login email/username"
		},
		"password": {
			"type": "string",
			"description": "LinkedIn password (will be handled securely)"
		},
		"profile_url": {
			"type": "string",
			"description": "Full URL of the LinkedIn profile to extract (e.g., https://www.linkedin.com/in/username)"
		}
	},
	"required": ["email", "password", "profile_url"],
	"additionalProperties": false
}`

// ExtractTool extracts a LinkedIn profile via the out-of-process extraction
// helper and persists the structured result. It is the only registered
// capability of this service.
type ExtractTool struct {
	extractor domain.ProfileExtractor
	store     domain.ProfileStore
	limiter   *RateLimiter
	logger    *slog.Logger
}

// NewExtractTool creates the extraction tool. limiter bounds how often
// extraction runs; a nil limiter disables the bound.
func NewExtractTool(extractor domain.ProfileExtractor, store domain.ProfileStore, limiter *RateLimiter, logger *slog.Logger) *ExtractTool {
	return &ExtractTool{
		extractor: extractor,
		store:     store,
		limiter:   limiter,
		logger:    logger,
	}
}

// Name implements domain.Tool.
func (t *ExtractTool) Name() string { return extractToolName }

// Description implements domain.Tool.
func (t *ExtractTool) Description() string {
	return "Extract and convert a LinkedIn profile to markdown and docx formats. " +
		"Call this when the user wants to extract their LinkedIn profile."
}

// Schema implements domain.Tool.
func (t *ExtractTool) Schema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  json.RawMessage(extractSchema),
	}
}

type extractParams struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	ProfileURL string `json:"profile_url"`
}

// Execute implements domain.Tool. The credential fields never reach logs or
// traces; only the profile URL does.
func (t *ExtractTool) Execute(ctx context.Context, params json.RawMessage) (*domain.ToolExecutionResult, error) {
	var p extractParams
	if err := json.Unmarshal(params, &p); err != nil {
		return &domain.ToolExecutionResult{
			Success: false,
			Error:   fmt.Sprintf("invalid JSON: %v", err),
		}, nil
	}

	if err := ValidateAll(
		RequireFields(
			"email", p.Email,
			"password", p.Password,
			"profile_url", p.ProfileURL,
		),
		ValidateURL("profile_url", p.ProfileURL),
		ValidateHostSuffix("profile_url", p.ProfileURL, "linkedin.com"),
	); err != nil {
		return &domain.ToolExecutionResult{Success: false, Error: err.Error()}, nil
	}

	if t.limiter != nil && !t.limiter.Allow() {
		return &domain.ToolExecutionResult{
			Success: false,
			Error:   "extraction rate limit reached, try again later",
		}, nil
	}

	ctx, span := tracer.StartSpan(ctx, "tool.extract_profile",
		trace.WithAttributes(tracer.StringAttr("profile.url", p.ProfileURL)),
	)
	defer span.End()

	start := time.Now()
	t.logger.Info("profile extraction started", "profile_url", p.ProfileURL)

	profile, err := t.extractor.Extract(ctx, p.Email, p.Password, p.ProfileURL)
	if err != nil {
		tracer.RecordError(span, err)
		t.logger.Error("profile extraction failed",
			"profile_url", p.ProfileURL,
			"duration", time.Since(start),
			"error", err,
		)
		return &domain.ToolExecutionResult{Success: false, Error: err.Error()}, nil
	}

	if t.store != nil {
		if _, err := t.store.Save(ctx, p.ProfileURL, profile); err != nil {
			// Extraction already succeeded; the result still goes back to
			// the conversation.
			t.logger.Warn("profile persistence failed",
				"profile_url", p.ProfileURL, "error", err)
		}
	}

	tracer.SetOK(span)
	t.logger.Info("profile extraction completed",
		"profile_url", p.ProfileURL,
		"duration", time.Since(start),
	)

	return &domain.ToolExecutionResult{Success: true, Data: profile}, nil
}

var _ domain.Tool = (*ExtractTool)(nil)
