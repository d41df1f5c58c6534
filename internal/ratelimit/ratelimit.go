package ratelimit

import (
	"sync"
	"time"
)

const (
	// DefaultMaxRequests is the default number of requests allowed per
	// window for a single client address.
	DefaultMaxRequests = 30
	// DefaultWindow is the default sliding window length.
	DefaultWindow = time.Minute
)

// CheckResult contains the result of a rate limit check.
type CheckResult struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Limiter tracks request timestamps per client address over a sliding
// window. It is safe for concurrent use.
type Limiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	window time.Duration
	max    int
}

// New creates a limiter allowing max requests per window for each address.
// Non-positive arguments fall back to the defaults.
func New(window time.Duration, max int) *Limiter {
	if window <= 0 {
		window = DefaultWindow
	}
	if max <= 0 {
		max = DefaultMaxRequests
	}
	return &Limiter{
		hits:   make(map[string][]time.Time),
		window: window,
		max:    max,
	}
}

// Check determines whether a request from addr is allowed at time now, and
// records it if so. When denied, RetryAfter reports how long until the
// oldest tracked request leaves the window.
func (l *Limiter) Check(addr string, now time.Time) CheckResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamps := l.hits[addr]

	// Drop timestamps that have left the window.
	kept := timestamps[:0]
	for _, t := range timestamps {
		if now.Sub(t) < l.window {
			kept = append(kept, t)
		}
	}

	if len(kept) >= l.max {
		l.hits[addr] = kept
		retryAfter := l.window - now.Sub(kept[0])
		return CheckResult{Allowed: false, RetryAfter: retryAfter}
	}

	l.hits[addr] = append(kept, now)
	return CheckResult{Allowed: true, RetryAfter: 0}
}

// Sweep removes addresses whose tracked requests have all left the window
// and returns the number of addresses removed. Call it periodically so idle
// clients do not pin memory.
func (l *Limiter) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for addr, timestamps := range l.hits {
		idle := true
		for _, t := range timestamps {
			if now.Sub(t) < l.window {
				idle = false
				break
			}
		}
		if idle {
			delete(l.hits, addr)
			removed++
		}
	}
	return removed
}

// Tracked returns the number of addresses currently tracked.
func (l *Limiter) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hits)
}
