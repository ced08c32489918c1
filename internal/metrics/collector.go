// Package metrics provides in-memory runtime statistics collection.
package metrics

import (
	"sync"
	"time"
)

// Operation names for the collector.
const (
	OpFetchText     = "fetch_text"
	OpFetchMetadata = "fetch_metadata"
	OpLLMGenerate   = "llm_generate"
	OpNormalize     = "normalize"
)

// OperationMetrics holds aggregated metrics for a single operation type.
type OperationMetrics struct {
	Count     int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration

	// Character counts of prompt/response (only for LLM operations)
	TotalPromptChars   int64
	TotalResponseChars int64
}

// OperationSnapshot provides computed stats from raw metrics.
type OperationSnapshot struct {
	Count       int64   `json:"count"`
	TotalTimeMs int64   `json:"total_time_ms"`
	AvgTimeMs   float64 `json:"avg_time_ms"`
	MinTimeMs   int64   `json:"min_time_ms"`
	MaxTimeMs   int64   `json:"max_time_ms"`

	// Prompt/response stats (nil if not applicable)
	TotalPromptChars   *int64 `json:"total_prompt_chars,omitempty"`
	TotalResponseChars *int64 `json:"total_response_chars,omitempty"`
}

// Snapshot represents the full server statistics at a point in time.
type Snapshot struct {
	UptimeSeconds float64                      `json:"uptime_seconds"`
	CacheEntries  int                          `json:"cache_entries"`
	Operations    map[string]OperationSnapshot `json:"operations"`
}

// Collector aggregates in-memory runtime statistics.
// All methods are thread-safe.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	ops       map[string]*OperationMetrics
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		ops:       make(map[string]*OperationMetrics),
	}
}

// getOrCreate returns existing metrics or creates new ones for an operation.
// Caller must hold the write lock.
func (c *Collector) getOrCreate(op string) *OperationMetrics {
	m, ok := c.ops[op]
	if !ok {
		m = &OperationMetrics{}
		c.ops[op] = m
	}
	return m
}

// Record adds a timing sample for an operation.
func (c *Collector) Record(op string, d time.Duration) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(op)
	m.Count++
	m.TotalTime += d
	if m.MinTime == 0 || d < m.MinTime {
		m.MinTime = d
	}
	if d > m.MaxTime {
		m.MaxTime = d
	}
}

// RecordLLM adds a timing sample plus prompt/response sizes for an LLM call.
func (c *Collector) RecordLLM(op string, d time.Duration, promptChars, responseChars int) {
	if c == nil {
		return
	}
	c.Record(op, d)

	c.mu.Lock()
	defer c.mu.Unlock()
	m := c.getOrCreate(op)
	m.TotalPromptChars += int64(promptChars)
	m.TotalResponseChars += int64(responseChars)
}

// Snapshot returns the current statistics. cacheEntries is supplied by the
// caller since the cache lives outside this package.
func (c *Collector) Snapshot(cacheEntries int) Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		UptimeSeconds: time.Since(c.startTime).Seconds(),
		CacheEntries:  cacheEntries,
		Operations:    make(map[string]OperationSnapshot, len(c.ops)),
	}

	for op, m := range c.ops {
		os := OperationSnapshot{
			Count:       m.Count,
			TotalTimeMs: m.TotalTime.Milliseconds(),
			MinTimeMs:   m.MinTime.Milliseconds(),
			MaxTimeMs:   m.MaxTime.Milliseconds(),
		}
		if m.Count > 0 {
			os.AvgTimeMs = float64(m.TotalTime.Milliseconds()) / float64(m.Count)
		}
		if m.TotalPromptChars > 0 || m.TotalResponseChars > 0 {
			p, r := m.TotalPromptChars, m.TotalResponseChars
			os.TotalPromptChars = &p
			os.TotalResponseChars = &r
		}
		snap.Operations[op] = os
	}

	return snap
}
