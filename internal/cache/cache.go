// Package cache provides an in-memory TTL cache for completed analyses.
package cache

import (
	"sync"
	"time"

	"github.com/raphaelgruber/bookgraph/internal/models"
)

// DefaultTTL is how long a completed analysis stays servable.
const DefaultTTL = time.Hour

// Entry is one cached analysis keyed by book ID.
type Entry struct {
	Metadata  models.BookMetadata
	Result    models.AnalysisResult
	CreatedAt time.Time
}

// Cache memoizes analysis results per book ID. Expired entries are
// evicted lazily on lookup; within the TTL window the map is unbounded.
// Safe for concurrent use. There is no per-key build lock: two concurrent
// misses for the same book both run the full pipeline.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]Entry
	now     func() time.Time
}

// New creates a cache. A non-positive ttl falls back to DefaultTTL.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]Entry),
		now:     time.Now,
	}
}

// Get returns the cached entry for bookID. A stale entry is deleted and
// reported absent rather than returned.
func (c *Cache) Get(bookID string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[bookID]
	if !ok {
		return Entry{}, false
	}
	if c.now().Sub(e.CreatedAt) >= c.ttl {
		delete(c.entries, bookID)
		return Entry{}, false
	}
	return e, true
}

// Put stores a completed analysis for bookID, replacing any previous entry.
func (c *Cache) Put(bookID string, meta models.BookMetadata, result models.AnalysisResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[bookID] = Entry{
		Metadata:  meta,
		Result:    result,
		CreatedAt: c.now(),
	}
}

// Len reports how many entries are currently stored, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
