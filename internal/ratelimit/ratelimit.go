// Package ratelimit provides per-tenant admission control.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	cleanupInterval = 5 * time.Minute
	staleThreshold  = 10 * time.Minute
)

// Limiter admits up to `requests` chat requests per tenant per window
// using a token bucket refilled at requests/window with burst = requests.
// Cleanup of stale tenant entries happens inline during Admit calls.
type Limiter struct {
	mu          sync.Mutex
	tenants     map[string]*bucket
	limit       rate.Limit
	burst       int
	lastCleanup time.Time
}

// bucket holds a rate limiter and last-seen time for a single tenant.
type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New creates a limiter allowing `requests` admissions per window.
func New(requests int, window time.Duration) *Limiter {
	if requests <= 0 {
		requests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{
		tenants:     make(map[string]*bucket),
		limit:       rate.Limit(float64(requests) / window.Seconds()),
		burst:       requests,
		lastCleanup: time.Now(),
	}
}

// Admit reports whether a request for the tenant is allowed.
// Safe for concurrent use; the check-and-consume is a single critical
// section per call.
func (l *Limiter) Admit(tenantID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()

	// Periodic cleanup of stale entries
	if now.Sub(l.lastCleanup) > cleanupInterval {
		for k, b := range l.tenants {
			if now.Sub(b.lastSeen) > staleThreshold {
				delete(l.tenants, k)
			}
		}
		l.lastCleanup = now
	}

	b, exists := l.tenants[tenantID]
	if !exists {
		limiter := rate.NewLimiter(l.limit, l.burst)
		l.tenants[tenantID] = &bucket{
			limiter:  limiter,
			lastSeen: now,
		}
		limiter.Allow()
		return true
	}

	b.lastSeen = now
	return b.limiter.Allow()
}
