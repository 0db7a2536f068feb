package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/secondbrain/secondbrain/internal/assistant"
	"github.com/secondbrain/secondbrain/internal/brain"
	"github.com/secondbrain/secondbrain/internal/config"
	"github.com/secondbrain/secondbrain/internal/httpapi"
	"github.com/secondbrain/secondbrain/internal/memory"
	"github.com/secondbrain/secondbrain/internal/observability"
	"github.com/secondbrain/secondbrain/internal/prompt"
	"github.com/secondbrain/secondbrain/internal/reports"
	"github.com/secondbrain/secondbrain/internal/search"
	"github.com/secondbrain/secondbrain/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	store, err := memory.NewStore(ctx, cfg.DatabaseURL, cfg.DatabasePath)
	if err != nil {
		log.Fatalf("store init failed: %v", err)
	}
	defer store.Close()

	var llm brain.Brain
	if cfg.OpenAIAPIKey != "" {
		oai, err := brain.NewOpenAIBrain(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if err != nil {
			log.Fatalf("brain init failed: %v", err)
		}
		llm = brain.NewRetryBrain(oai, 2)
		log.Printf("brain: openai model %s", cfg.OpenAIModel)
	} else {
		llm = brain.NewMockBrain()
		log.Printf("brain: mock (set OPENAI_API_KEY for real completions)")
	}

	assembler := prompt.NewAssembler(store,
		prompt.WithMaxTurns(cfg.MaxConversationHistory),
		prompt.WithMaxMemories(cfg.MaxMemoryEntries),
		prompt.WithCacheTTL(cfg.ContextCacheTTL),
	)

	searcher := search.NewClient(cfg.GoogleAPIKey, cfg.GoogleCSEID,
		search.WithTimeout(cfg.SearchTimeout))

	var forecaster weather.Provider
	if cfg.OpenWeatherAPIKey != "" && cfg.WeatherCity != "" {
		forecaster = weather.NewClient(cfg.OpenWeatherAPIKey, cfg.WeatherCity, cfg.WeatherPlace)
	}

	orchestrator := assistant.New(assistant.Config{
		Store:             store,
		Brain:             llm,
		Searcher:          searcher,
		Weather:           forecaster,
		Assembler:         assembler,
		Reports:           reports.NewGenerator(cfg.ReportsDir),
		Metrics:           metrics,
		ResponseCacheSize: cfg.ResponseCacheSize,
		MemoryWorkers:     cfg.MemoryWorkers,
	})
	defer orchestrator.Close()

	srv := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: httpapi.New(cfg, orchestrator, store).Router(),
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("http listening on %s", cfg.BindAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	replDone := make(chan struct{})
	go func() {
		defer close(replDone)
		runREPL(ctx, orchestrator, store)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Printf("http server error: %v", err)
	case <-stop:
		log.Printf("shutting down")
	case <-replDone:
		log.Printf("goodbye")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
}
