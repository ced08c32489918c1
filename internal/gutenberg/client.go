// Package gutenberg fetches public-domain book text and bibliographic
// metadata from Project Gutenberg.
package gutenberg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/raphaelgruber/bookgraph/internal/metrics"
	"github.com/raphaelgruber/bookgraph/internal/models"
	"golang.org/x/net/html"
)

// DefaultBaseURL is the production Project Gutenberg host.
const DefaultBaseURL = "https://www.gutenberg.org"

// Sentinel errors for book retrieval.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotFound indicates the upstream has no record for the book ID.
	ErrNotFound = errors.New("book not found")

	// ErrFetchFailed indicates a network or parse failure while
	// retrieving text or metadata.
	ErrFetchFailed = errors.New("fetch failed")
)

// Client retrieves book text and metadata over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	metrics *metrics.Collector
}

// NewClient creates a Gutenberg client. An empty baseURL falls back to
// DefaultBaseURL; a zero timeout falls back to 30 seconds.
func NewClient(baseURL string, timeout time.Duration, mc *metrics.Collector) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		metrics: mc,
	}
}

// FetchText retrieves the plain-text edition of a book.
func (c *Client) FetchText(ctx context.Context, bookID string) (string, error) {
	start := time.Now()
	defer func() { c.metrics.Record(metrics.OpFetchText, time.Since(start)) }()

	url := fmt.Sprintf("%s/cache/epub/%s/pg%s.txt", c.baseURL, bookID, bookID)
	body, err := c.get(ctx, url)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", fmt.Errorf("text for book %s: %w", bookID, err)
		}
		return "", fmt.Errorf("fetch text for book %s: %w", bookID, err)
	}
	return string(body), nil
}

// FetchMetadata retrieves and parses the book's catalog page.
func (c *Client) FetchMetadata(ctx context.Context, bookID string) (models.BookMetadata, error) {
	start := time.Now()
	defer func() { c.metrics.Record(metrics.OpFetchMetadata, time.Since(start)) }()

	url := fmt.Sprintf("%s/ebooks/%s", c.baseURL, bookID)
	body, err := c.get(ctx, url)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.BookMetadata{}, fmt.Errorf("metadata for book %s: %w", bookID, err)
		}
		return models.BookMetadata{}, fmt.Errorf("fetch metadata for book %s: %w", bookID, err)
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return models.BookMetadata{}, fmt.Errorf("parse metadata page for book %s: %w: %v", bookID, ErrFetchFailed, err)
	}

	return ExtractMetadata(doc), nil
}

// get performs an HTTP GET and maps status codes onto the error taxonomy.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: unexpected status %d", ErrFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	return body, nil
}
