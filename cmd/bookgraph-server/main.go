// Package main provides the HTTP server for bookgraph.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raphaelgruber/bookgraph/internal/cache"
	"github.com/raphaelgruber/bookgraph/internal/config"
	"github.com/raphaelgruber/bookgraph/internal/gutenberg"
	"github.com/raphaelgruber/bookgraph/internal/llm"
	"github.com/raphaelgruber/bookgraph/internal/metrics"
	"github.com/raphaelgruber/bookgraph/internal/server"
	"github.com/raphaelgruber/bookgraph/internal/service"
)

func main() {
	cfg := config.Load()

	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer func() {
		if err := cleanup(); err != nil {
			slog.Error("failed to close log file", "error", err)
		}
	}()
	slog.SetDefault(logger)

	slog.Info("starting bookgraph-server",
		"port", cfg.Port,
		"provider", cfg.LLMProvider,
		"model", cfg.LLMModel,
	)

	mc := metrics.NewCollector()

	model, err := llm.NewModel(cfg, mc)
	if err != nil {
		slog.Error("failed to create model", "error", err)
		os.Exit(1)
	}

	books := gutenberg.NewClient(cfg.GutenbergBaseURL, cfg.FetchTimeout, mc)
	svc := service.NewAnalysisService(books, model, cache.New(cfg.CacheTTL), logger, mc)
	srv := server.New(svc, logger, mc)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Minute, // Long for cold LLM analyses
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("viewer available", "url", fmt.Sprintf("http://localhost:%s/", cfg.Port))
		slog.Info("analyze endpoint available", "url", fmt.Sprintf("http://localhost:%s/analyze-book?bookId=<id>", cfg.Port))

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
