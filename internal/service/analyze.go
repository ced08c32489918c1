// Package service provides the analysis pipeline for bookgraph.
package service

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/raphaelgruber/bookgraph/internal/analysis"
	"github.com/raphaelgruber/bookgraph/internal/cache"
	"github.com/raphaelgruber/bookgraph/internal/llm"
	"github.com/raphaelgruber/bookgraph/internal/metrics"
	"github.com/raphaelgruber/bookgraph/internal/models"
)

// Analysis source values reported to the client.
const (
	SourceCache = "cache"
	SourceAPI   = "api"
)

// BookSource supplies raw text and bibliographic metadata for a book.
type BookSource interface {
	FetchText(ctx context.Context, bookID string) (string, error)
	FetchMetadata(ctx context.Context, bookID string) (models.BookMetadata, error)
}

// TextGenerator produces raw model output for a system/user prompt pair.
type TextGenerator interface {
	GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Analysis is a completed pipeline run for one book.
type Analysis struct {
	Metadata models.BookMetadata
	Result   models.AnalysisResult
	Source   string // "cache" or "api"
}

// AnalysisService sequences fetch, prompt, model call and normalization.
type AnalysisService struct {
	books   BookSource
	model   TextGenerator
	cache   *cache.Cache
	logger  *slog.Logger
	metrics *metrics.Collector
}

// NewAnalysisService creates the pipeline with its collaborators injected.
func NewAnalysisService(books BookSource, model TextGenerator, c *cache.Cache, logger *slog.Logger, mc *metrics.Collector) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		books:   books,
		model:   model,
		cache:   c,
		logger:  logger,
		metrics: mc,
	}
}

// Analyze runs the full pipeline for a book ID. The first failure at any
// stage fails the whole request; there are no retries and no partial
// results. Cached results are served until their TTL elapses.
func (s *AnalysisService) Analyze(ctx context.Context, bookID string) (Analysis, error) {
	if e, ok := s.cache.Get(bookID); ok {
		s.logger.Debug("cache hit", "book_id", bookID)
		return Analysis{Metadata: e.Metadata, Result: e.Result, Source: SourceCache}, nil
	}

	start := time.Now()

	// Text and metadata are independent upstream calls; fetch them
	// concurrently and wait for both before touching the model.
	var (
		text string
		meta models.BookMetadata
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		text, err = s.books.FetchText(gctx, bookID)
		return err
	})
	g.Go(func() error {
		var err error
		meta, err = s.books.FetchMetadata(gctx, bookID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("book fetch failed", "book_id", bookID, "error", err)
		return Analysis{}, err
	}

	prompt := llm.BuildPrompt(text, meta)
	raw, err := s.model.GenerateWithSystem(ctx, llm.SystemPrompt, prompt)
	if err != nil {
		s.logger.Error("model call failed", "book_id", bookID, "error", err)
		return Analysis{}, err
	}

	normStart := time.Now()
	result, err := analysis.Normalize(raw)
	s.metrics.Record(metrics.OpNormalize, time.Since(normStart))
	if err != nil {
		s.logger.Error("normalization failed", "book_id", bookID, "error", err)
		return Analysis{}, err
	}

	s.cache.Put(bookID, meta, result)

	s.logger.Info("analysis completed",
		"book_id", bookID,
		"title", meta.Title,
		"characters", len(result.Characters),
		"relationships", len(result.Relationships),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return Analysis{Metadata: meta, Result: result, Source: SourceAPI}, nil
}

// CacheSize reports the number of cached analyses.
func (s *AnalysisService) CacheSize() int {
	return s.cache.Len()
}
