package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/bookgraph/internal/cache"
	"github.com/raphaelgruber/bookgraph/internal/metrics"
	"github.com/raphaelgruber/bookgraph/internal/models"
	"github.com/raphaelgruber/bookgraph/internal/service"
)

type stubSource struct {
	meta models.BookMetadata
	err  error
}

func (s stubSource) FetchText(ctx context.Context, bookID string) (string, error) {
	return "book text", s.err
}

func (s stubSource) FetchMetadata(ctx context.Context, bookID string) (models.BookMetadata, error) {
	return s.meta, s.err
}

type stubModel struct {
	reply string
}

func (s stubModel) GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return s.reply, nil
}

const stubReply = `{
  "summary": "A tragedy of revenge.",
  "analysis": {"themes": ["revenge"]},
  "characters": [
    {"id": "hamlet", "name": "Hamlet", "description": "Prince", "role": "Protagonist"}
  ],
  "relationships": []
}`

func newTestHandler(t *testing.T, src service.BookSource, model service.TextGenerator) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mc := metrics.NewCollector()
	svc := service.NewAnalysisService(src, model, cache.New(time.Hour), logger, mc)
	return New(svc, logger, mc).Handler()
}

func doGet(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestAnalyzeBook(t *testing.T) {
	h := newTestHandler(t,
		stubSource{meta: models.BookMetadata{Title: "Hamlet", Author: "William Shakespeare"}},
		stubModel{reply: stubReply},
	)

	rec := doGet(t, h, "/analyze-book?bookId=1787")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Error)
	require.NotNil(t, resp.Metadata)
	assert.Equal(t, "Hamlet", resp.Metadata.Title)
	require.NotNil(t, resp.AnalysisResult)
	assert.Equal(t, "A tragedy of revenge.", resp.AnalysisResult.Summary)
	assert.Equal(t, service.SourceAPI, resp.Source)

	// Second call is served from cache.
	rec = doGet(t, h, "/analyze-book?bookId=1787")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, service.SourceCache, resp.Source)
}

func TestAnalyzeBookMissingID(t *testing.T) {
	h := newTestHandler(t, stubSource{}, stubModel{reply: stubReply})

	rec := doGet(t, h, "/analyze-book")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Missing bookId parameter.", resp.Error)
	assert.Nil(t, resp.AnalysisResult)
}

func TestAnalyzeBookUpstreamError(t *testing.T) {
	h := newTestHandler(t, stubSource{err: errors.New("gutenberg unreachable")}, stubModel{reply: stubReply})

	rec := doGet(t, h, "/analyze-book?bookId=1787")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "gutenberg unreachable")
}

func TestGraph(t *testing.T) {
	h := newTestHandler(t,
		stubSource{meta: models.BookMetadata{Title: "Hamlet"}},
		stubModel{reply: stubReply},
	)

	rec := doGet(t, h, "/graph?bookId=1787")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp graphResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Graph)
	require.Len(t, resp.Graph.Nodes, 1)
	assert.Equal(t, "hamlet", resp.Graph.Nodes[0].ID)
	assert.Equal(t, "Hamlet", resp.Graph.Nodes[0].Label)
}

func TestGraphMissingID(t *testing.T) {
	h := newTestHandler(t, stubSource{}, stubModel{reply: stubReply})

	rec := doGet(t, h, "/graph")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp graphResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Missing bookId parameter.", resp.Error)
}

func TestStats(t *testing.T) {
	h := newTestHandler(t,
		stubSource{meta: models.BookMetadata{Title: "Hamlet"}},
		stubModel{reply: stubReply},
	)

	rec := doGet(t, h, "/analyze-book?bookId=1787")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doGet(t, h, "/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap metrics.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 1, snap.CacheEntries)
	assert.Equal(t, int64(1), snap.Operations[metrics.OpNormalize].Count)
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t, stubSource{}, stubModel{})

	rec := doGet(t, h, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}
