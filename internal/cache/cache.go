// Package cache implements the time-bounded mood-to-quote cache.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"moodquote/internal/telemetry"
)

// DefaultTTL is the reference entry lifetime.
const DefaultTTL = 60 * time.Second

// Entry is the caller-visible view of a cache entry.
type Entry struct {
	Text        string
	GeneratedAt time.Time
	Fallback    bool
}

// entry additionally carries storedAt, the expiry clock. It is a
// monotonic time.Time reading and is never exposed to callers.
type entry struct {
	text        string
	generatedAt time.Time
	storedAt    time.Time
	fallback    bool
}

// QuoteCache maps normalized mood keys to quote entries with TTL-driven
// visibility. At most one entry exists per key; Put is last-write-wins.
// All methods are safe for concurrent use.
type QuoteCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	metrics *telemetry.Metrics
}

// New creates a cache with the given TTL. A non-positive TTL falls back
// to DefaultTTL. Metrics may be nil.
func New(ttl time.Duration, metrics *telemetry.Metrics) *QuoteCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &QuoteCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		metrics: metrics,
	}
}

// TTL returns the configured entry lifetime.
func (c *QuoteCache) TTL() time.Duration {
	return c.ttl
}

// Get returns the entry for a key if present and unexpired. Expired
// entries are invisible; they linger until the next Sweep or Put.
func (c *QuoteCache) Get(key string) (Entry, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Since(e.storedAt) >= c.ttl {
		if c.metrics != nil {
			c.metrics.CacheMisses.Inc()
		}
		return Entry{}, false
	}

	if c.metrics != nil {
		c.metrics.CacheHits.Inc()
	}
	return Entry{Text: e.text, GeneratedAt: e.generatedAt, Fallback: e.fallback}, true
}

// Put inserts or replaces the entry for a key and resets its expiry
// clock. Existing entries are overwritten unconditionally.
func (c *QuoteCache) Put(key, text string, generatedAt time.Time, fallback bool) {
	c.mu.Lock()
	c.entries[key] = entry{
		text:        text,
		generatedAt: generatedAt,
		storedAt:    time.Now(),
		fallback:    fallback,
	}
	size := len(c.entries)
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.CacheEntries.Set(float64(size))
	}
}

// Sweep removes every entry whose age exceeds the TTL and returns the
// number removed.
func (c *QuoteCache) Sweep() int {
	c.mu.Lock()
	removed := 0
	for key, e := range c.entries {
		if time.Since(e.storedAt) >= c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	size := len(c.entries)
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.CacheEntries.Set(float64(size))
		c.metrics.CacheEvictions.Add(float64(removed))
	}
	return removed
}

// Len returns the number of stored entries, expired ones included.
func (c *QuoteCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Run sweeps the cache on a fixed interval until the context is
// canceled. Intended to be started once as a background goroutine; it
// never blocks request handling beyond the per-sweep write lock.
func (c *QuoteCache) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = c.ttl
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := c.Sweep(); removed > 0 {
				slog.Debug("Cache sweep completed", "removed", removed, "remaining", c.Len())
			}
		}
	}
}
