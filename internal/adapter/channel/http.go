package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"linkedin-assistant/internal/adapter/profile"
	"linkedin-assistant/internal/domain"
	"linkedin-assistant/internal/infra/config"
	"linkedin-assistant/internal/infra/middleware"
	"linkedin-assistant/internal/usecase"
)

// Server exposes the chat API over HTTP.
type Server struct {
	orchestrator *usecase.Orchestrator
	classifier   *usecase.Classifier
	provider     domain.LLMProvider
	store        domain.ProfileStore
	logger       *slog.Logger
	cfg          config.ServerConfig

	apiKeyConfigured bool

	server *http.Server

	// Actual bound address (set after Start)
	boundAddr string

	// Lifecycle management for rate limiter cleanup goroutine
	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates the HTTP API server. apiKeyConfigured feeds the health
// endpoint; the key itself never reaches this layer.
func NewServer(
	orchestrator *usecase.Orchestrator,
	classifier *usecase.Classifier,
	provider domain.LLMProvider,
	store domain.ProfileStore,
	cfg config.ServerConfig,
	apiKeyConfigured bool,
	logger *slog.Logger,
) *Server {
	return &Server{
		orchestrator:     orchestrator,
		classifier:       classifier,
		provider:         provider,
		store:            store,
		cfg:              cfg,
		apiKeyConfigured: apiKeyConfigured,
		logger:           logger,
	}
}

type chatRequest struct {
	Messages []domain.Message `json:"messages"`
}

type chatResponse struct {
	Message      domain.Message `json:"message"`
	RequiresTool bool           `json:"requires_tool"`
}

type errorResponse struct {
	Error string           `json:"error"`
	Code  domain.ErrorCode `json:"code,omitempty"`
}

// Start begins the HTTP server. Non-blocking (serves in goroutine).
func (s *Server) Start(ctx context.Context) error {
	// Cancellable context bounds the rate limiter cleanup goroutine.
	s.ctx, s.cancel = context.WithCancel(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/chat", s.handleChat)
	mux.HandleFunc("/api/v1/health", s.handleHealth)
	mux.HandleFunc("/api/v1/test_completion", s.handleTestCompletion)
	mux.HandleFunc("/api/v1/profile", s.handleProfile)
	mux.HandleFunc("/api/v1/profile/download", s.handleProfileDownload)

	rpm := s.cfg.RequestsPerMin
	if rpm <= 0 {
		rpm = 100
	}
	burst := s.cfg.Burst
	if burst <= 0 {
		burst = 20
	}

	secureHandler := middleware.SecurityHeaders(
		middleware.RateLimit(s.ctx, rpm, burst)(mux),
	)

	s.server = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           secureHandler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      10 * time.Minute, // chat turns span several completions and an extraction
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	s.boundAddr = ln.Addr().String()

	go func() {
		s.logger.Info("http server started", "addr", s.boundAddr)
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server error", "error", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Addr returns the actual bound address after Start.
func (s *Server) Addr() string { return s.boundAddr }

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	// Limit request body to 1MB to prevent DoS.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errMsg := "invalid JSON: " + err.Error()
		if err.Error() == "http: request body too large" {
			errMsg = "request body too large (max 1MB)"
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: errMsg})
		return
	}

	if len(req.Messages) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "messages is required"})
		return
	}

	requestID := ulid.Make().String()
	logger := s.logger.With("request_id", requestID)
	logger.Info("chat request", "messages", len(req.Messages))

	result, err := s.orchestrator.Run(r.Context(), req.Messages)
	if err != nil {
		outcome := s.classifier.Classify(err)
		logger.Error("chat request failed",
			"status", outcome.StatusCode,
			"code", outcome.Code,
			"error", err,
		)
		writeJSON(w, outcome.StatusCode, errorResponse{
			Error: outcome.Message,
			Code:  outcome.Code,
		})
		return
	}

	logger.Info("chat request completed", "tokens", result.Usage.TotalTokens)
	writeJSON(w, http.StatusOK, chatResponse{
		Message:      result.Message,
		RequiresTool: result.RequiresTool,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":             "healthy",
		"api_key_configured": s.apiKeyConfigured,
		"provider":           s.provider.Name(),
		"model":              s.provider.Model(),
		"timestamp":          time.Now().Format(time.RFC3339),
	})
}

// handleTestCompletion runs a minimal tool-free completion to verify the
// provider path end to end.
func (s *Server) handleTestCompletion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	resp, err := s.provider.Chat(r.Context(), domain.ChatRequest{
		Messages: []domain.Message{
			{Role: domain.RoleDeveloper, Content: "You are a helpful assistant."},
			{Role: domain.RoleUser, Content: "Say 'Hello, testing!' if you can hear me."},
		},
	})
	if err != nil {
		outcome := s.classifier.Classify(err)
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "error",
			"error":     outcome.Message,
			"timestamp": time.Now().Format(time.RFC3339),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "success",
		"model":     s.provider.Model(),
		"response":  resp.Message.Content,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	sp, err := s.latestProfile(r.Context(), w)
	if err != nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"content":     profile.RenderMarkdown(&sp.Profile),
		"profile_url": sp.ProfileURL,
		"created_at":  sp.CreatedAt.Format(time.RFC3339),
	})
}

func (s *Server) handleProfileDownload(w http.ResponseWriter, r *http.Request) {
	sp, err := s.latestProfile(r.Context(), w)
	if err != nil {
		return
	}
	md := profile.RenderMarkdown(&sp.Profile)
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="profile.md"`)
	w.Write([]byte(md))
}

// latestProfile fetches the most recent stored profile, writing the error
// response itself when there is none.
func (s *Server) latestProfile(ctx context.Context, w http.ResponseWriter) (*domain.StoredProfile, error) {
	if s.store == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error: "No profile has been generated yet",
			Code:  domain.CodeProfileNotFound,
		})
		return nil, domain.ErrProfileNotFound
	}

	sp, err := s.store.Latest(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{
				Error: "No profile has been generated yet",
				Code:  domain.CodeProfileNotFound,
			})
			return nil, err
		}
		s.logger.Error("profile lookup failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: err.Error(),
			Code:  domain.ErrorCodeOf(err),
		})
		return nil, err
	}
	return sp, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
