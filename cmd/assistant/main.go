package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"linkedin-assistant/internal/adapter/channel"
	"linkedin-assistant/internal/adapter/extractor"
	"linkedin-assistant/internal/adapter/llm"
	"linkedin-assistant/internal/adapter/profile"
	"linkedin-assistant/internal/adapter/tool"
	"linkedin-assistant/internal/domain"
	"linkedin-assistant/internal/infra/config"
	"linkedin-assistant/internal/infra/logger"
	"linkedin-assistant/internal/infra/tracer"
	"linkedin-assistant/internal/usecase"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "--help", "-h", "help":
			showUsage()
			return
		}
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`linkedin-assistant - LinkedIn profile extraction chat service

USAGE:
    linkedin-assistant [FLAGS]

FLAGS:
    -h, --help       Show this help message
    --config PATH    Config file path (default: ./config.yaml, optional)

CONFIGURATION:
    Config file: ./config.yaml
    Environment: LNKD_* variables override config
                 (OPENAI_API_KEY is honored when no key is configured)

ENDPOINTS:
    POST /api/v1/chat              Chat with tool-calling support
    GET  /api/v1/health            Health check
    POST /api/v1/test_completion   Verify the completion provider
    GET  /api/v1/profile           Latest extracted profile (markdown)
    GET  /api/v1/profile/download  Download latest profile as a file`)
}

func run() error {
	// 1. Config
	cfgPath := configPath()
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		cfgPath = "" // defaults + env only
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// 2. Logger & Tracer
	log, logCloser, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logCloser()

	ctx := context.Background()
	tracerShutdown, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	defer tracerShutdown(ctx)

	// 3. Completion provider (circuit breaker wrapped)
	var provider domain.LLMProvider = llm.NewOpenAIProvider(cfg.LLM.Provider, log)
	if cfg.LLM.CircuitBreaker.Enabled {
		provider = llm.NewCircuitBreakerProvider(provider, cfg.LLM.CircuitBreaker, log)
	}

	// 4. Profile store
	store, err := profile.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer store.Close()

	// 5. Tools
	remote := extractor.NewRemoteExtractor(cfg.Extractor, log)
	limiter := tool.NewRateLimiter(cfg.Tools.ExtractLimit, cfg.Tools.ExtractWindow)

	registry := tool.NewRegistry(log)
	if err := registry.Register(tool.NewExtractTool(remote, store, limiter, log)); err != nil {
		return fmt.Errorf("tools: %w", err)
	}
	executor := tool.NewExecutor(registry, log)

	// 6. Orchestrator + classifier
	orchestrator := usecase.NewOrchestrator(usecase.OrchestratorDeps{
		LLM:          provider,
		Tools:        executor,
		Logger:       log,
		MaxTurns:     cfg.Chat.MaxTurns,
		SystemPrompt: cfg.Chat.SystemPrompt,
	})
	classifier := usecase.NewClassifier()

	// 7. HTTP server
	server := channel.NewServer(orchestrator, classifier, provider, store,
		cfg.Server, cfg.LLM.Provider.APIKey != "", log)

	// 8. Graceful shutdown
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}

	log.Info("linkedin-assistant started",
		"addr", server.Addr(),
		"provider", provider.Name(),
		"model", provider.Model(),
		"max_turns", cfg.Chat.MaxTurns,
		"tools", len(registry.List()),
	)

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("server shutdown error", "error", err)
	}
	log.Info("linkedin-assistant stopped")
	return nil
}

func configPath() string {
	for i, arg := range os.Args {
		if arg == "--config" && i+1 < len(os.Args) {
			return os.Args[i+1]
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	if p := os.Getenv("LNKD_CONFIG"); p != "" {
		return p
	}
	return "config.yaml"
}
