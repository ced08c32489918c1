// Package server provides the HTTP API for bookgraph.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/raphaelgruber/bookgraph/internal/graphview"
	"github.com/raphaelgruber/bookgraph/internal/metrics"
	"github.com/raphaelgruber/bookgraph/internal/models"
	"github.com/raphaelgruber/bookgraph/internal/service"
	"github.com/raphaelgruber/bookgraph/web"
)

// Server wires the analysis service into HTTP routes.
type Server struct {
	svc     *service.AnalysisService
	logger  *slog.Logger
	metrics *metrics.Collector
}

// New creates a server around the given analysis service.
func New(svc *service.AnalysisService, logger *slog.Logger, mc *metrics.Collector) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{svc: svc, logger: logger, metrics: mc}
}

// analyzeResponse is the envelope for /analyze-book. Error messages are
// unstructured human-readable text; clients only branch on success.
type analyzeResponse struct {
	Success        bool                   `json:"success"`
	Metadata       *models.BookMetadata   `json:"metadata,omitempty"`
	AnalysisResult *models.AnalysisResult `json:"analysisResult,omitempty"`
	Source         string                 `json:"source,omitempty"`
	Error          string                 `json:"error,omitempty"`
}

// graphResponse is the envelope for /graph.
type graphResponse struct {
	Success bool             `json:"success"`
	Graph   *graphview.Graph `json:"graph,omitempty"`
	Source  string           `json:"source,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// Handler builds the route mux with logging middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /analyze-book", s.handleAnalyzeBook)
	mux.HandleFunc("GET /graph", s.handleGraph)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	// Serve the embedded viewer UI from web/dist
	if distFS, err := fs.Sub(web.Dist, "dist"); err == nil {
		mux.Handle("/", http.FileServer(http.FS(distFS)))
	}

	return LoggingMiddleware(s.logger)(mux)
}

func (s *Server) handleAnalyzeBook(w http.ResponseWriter, r *http.Request) {
	bookID := r.URL.Query().Get("bookId")
	if bookID == "" {
		writeJSON(w, http.StatusBadRequest, analyzeResponse{
			Success: false,
			Error:   "Missing bookId parameter.",
		})
		return
	}

	a, err := s.svc.Analyze(r.Context(), bookID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, analyzeResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		Success:        true,
		Metadata:       &a.Metadata,
		AnalysisResult: &a.Result,
		Source:         a.Source,
	})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	bookID := r.URL.Query().Get("bookId")
	if bookID == "" {
		writeJSON(w, http.StatusBadRequest, graphResponse{
			Success: false,
			Error:   "Missing bookId parameter.",
		})
		return
	}

	a, err := s.svc.Analyze(r.Context(), bookID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, graphResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	g := graphview.Build(a.Result)
	writeJSON(w, http.StatusOK, graphResponse{
		Success: true,
		Graph:   &g,
		Source:  a.Source,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.Snapshot(s.svc.CacheSize()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && !errors.Is(err, http.ErrHandlerTimeout) {
		slog.Warn("failed to encode response", "error", err)
	}
}
