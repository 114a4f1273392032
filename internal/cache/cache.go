// Package cache memoizes generated replies for literally repeated queries.
package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/snowskye/lead-gateway/pkg/metrics"
)

// DefaultMaxEntries is the safety bound against unbounded growth in a
// pathological traffic burst. Eviction is otherwise TTL-based.
const DefaultMaxEntries = 10000

type entry struct {
	reply    string
	expires  time.Time
	inserted time.Time
}

// ResponseCache memoizes replies keyed by (tenant, normalized message).
// Safe for concurrent use.
type ResponseCache struct {
	mu         sync.Mutex
	entries    map[string]entry
	ttl        time.Duration
	maxEntries int
}

// New creates a cache with the given TTL and entry bound.
func New(ttl time.Duration, maxEntries int) *ResponseCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &ResponseCache{
		entries:    make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

// Normalize canonicalizes a message for cache keying: trim plus case-fold.
func Normalize(message string) string {
	return strings.ToLower(strings.TrimSpace(message))
}

func cacheKey(tenantID, normalized string) string {
	return tenantID + "\x00" + normalized
}

// Get returns a cached reply if present and unexpired.
func (c *ResponseCache) Get(tenantID, normalized string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(tenantID, normalized)
	e, ok := c.entries[key]
	if !ok {
		metrics.CacheEventsTotal.WithLabelValues("miss").Inc()
		return "", false
	}
	if time.Now().After(e.expires) {
		delete(c.entries, key)
		metrics.CacheEventsTotal.WithLabelValues("miss").Inc()
		return "", false
	}

	metrics.CacheEventsTotal.WithLabelValues("hit").Inc()
	return e.reply, true
}

// Put stores a reply under (tenant, normalized message).
func (c *ResponseCache) Put(tenantID, normalized, reply string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if len(c.entries) >= c.maxEntries {
		c.evictLocked(now)
	}

	c.entries[cacheKey(tenantID, normalized)] = entry{
		reply:    reply,
		expires:  now.Add(c.ttl),
		inserted: now,
	}
}

// Len reports the current entry count.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictLocked drops expired entries, then the oldest insertion if the
// cache is still full.
func (c *ResponseCache) evictLocked(now time.Time) {
	for k, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, k)
		}
	}
	if len(c.entries) < c.maxEntries {
		return
	}

	var oldestKey string
	var oldest time.Time
	for k, e := range c.entries {
		if oldestKey == "" || e.inserted.Before(oldest) {
			oldestKey = k
			oldest = e.inserted
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
