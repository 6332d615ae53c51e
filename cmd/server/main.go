package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/samaahar/podcast-gateway/internal/config"
	"github.com/samaahar/podcast-gateway/internal/llm"
	"github.com/samaahar/podcast-gateway/internal/observability"
	"github.com/samaahar/podcast-gateway/internal/podcast"
	"github.com/samaahar/podcast-gateway/internal/resilience"
	"github.com/samaahar/podcast-gateway/internal/script"
	"github.com/samaahar/podcast-gateway/internal/server"
	"github.com/samaahar/podcast-gateway/internal/tts"
	"github.com/samaahar/podcast-gateway/internal/wiki"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use fmt for fatal errors before logger is initialized
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	observability.InitLogger(cfg.LogLevel, cfg.LogPretty)
	logger := observability.GetLogger()

	logger.Info().
		Str("port", cfg.Port).
		Str("llm_provider", cfg.LLMProvider).
		Str("wiki_language", cfg.WikiLanguage).
		Str("log_level", cfg.LogLevel).
		Bool("metrics_enabled", cfg.MetricsEnabled).
		Msg("Podcast Gateway Service starting")

	// Build the script generation provider
	provider, err := buildProvider(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create LLM provider")
	}
	defer provider.Close()

	retry := &resilience.RetryConfig{
		MaxAttempts:       cfg.RetryMaxAttempts,
		InitialBackoff:    time.Duration(cfg.RetryInitialBackoff) * time.Millisecond,
		MaxBackoff:        5 * time.Second,
		BackoffMultiplier: 2.0,
		Jitter:            true,
	}

	promptOpts := script.PromptOptions{
		HindiRatio:     cfg.HinglishHindiRatio,
		WordsPerSecond: cfg.WordsPerSecond,
		CharBudget:     cfg.WikiCharBudget,
	}

	wikiClient := wiki.NewClient(cfg.WikiLanguage, cfg.WikiCharBudget)
	generator := script.NewGenerator(provider, promptOpts, retry)
	synth := tts.NewEdgeClient()
	defer synth.Close()

	pipeline := podcast.New(cfg, wikiClient, generator, synth)
	srv := server.New(cfg, pipeline, wikiClient)

	// Create HTTP server
	mux := http.NewServeMux()
	srv.Routes(mux)

	// Health check endpoint
	mux.HandleFunc("GET /health", observability.HealthCheckHandler())

	// Readiness endpoint - checks are created here to avoid import cycles
	wikiCheck := func(ctx context.Context) (bool, error) {
		results, err := wikiClient.Search(ctx, "India", 1)
		if err != nil {
			return false, err
		}
		return len(results) > 0, nil
	}

	providerCheck := func(ctx context.Context) (bool, error) {
		// Config validation already confirmed an API key is present; an
		// actual completion here would cost tokens on every probe
		if provider.Name() == "" {
			return false, fmt.Errorf("no LLM provider configured")
		}
		return true, nil
	}

	mux.HandleFunc("GET /ready", observability.ReadinessHandler(map[string]observability.HealthCheckFunc{
		"wikipedia": wikiCheck,
		"llm":       providerCheck,
	}))

	// Metrics endpoint (Prometheus)
	if cfg.MetricsEnabled {
		mux.Handle("GET /metrics", promhttp.Handler())
		logger.Info().Msg("Prometheus metrics enabled at /metrics")
	}

	httpServer := srv.HTTPServer(mux)

	// Start server in a goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("endpoint", fmt.Sprintf("http://localhost:%s/", cfg.Port)).
			Msg("Server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited gracefully")
}

func buildProvider(cfg *config.Config) (llm.Provider, error) {
	switch cfg.LLMProvider {
	case "groq":
		return llm.NewGroqClient(cfg.GroqAPIKey, cfg.GroqModel), nil
	case "gemini":
		return llm.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	}
	return nil, fmt.Errorf("unsupported LLM provider %q", cfg.LLMProvider)
}
