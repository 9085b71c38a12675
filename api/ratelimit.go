/*
ratelimit.go - Per-client request throttling

PURPOSE:
  Token-bucket rate limiting keyed by client IP. Each IP gets its own
  limiter; idle entries are pruned opportunistically so the map does
  not grow without bound.

SEE ALSO:
  - server.go: installs the middleware on the router
*/
package api

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// IP RATE LIMITER
// =============================================================================

const (
	pruneEvery = time.Minute
	idleAfter  = 10 * time.Minute
)

type ipLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter hands out one token bucket per client IP.
type IPRateLimiter struct {
	mu        sync.Mutex
	entries   map[string]*ipLimiterEntry
	rps       rate.Limit
	burst     int
	lastPrune time.Time
}

// NewIPRateLimiter creates a limiter allowing rps requests per second
// with the given burst per client IP.
func NewIPRateLimiter(rps float64, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		entries:   make(map[string]*ipLimiterEntry),
		rps:       rate.Limit(rps),
		burst:     burst,
		lastPrune: time.Now(),
	}
}

func (rl *IPRateLimiter) get(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	// Pruning piggybacks on lookups; no background goroutine to leak.
	if now.Sub(rl.lastPrune) > pruneEvery {
		for addr, e := range rl.entries {
			if now.Sub(e.lastSeen) > idleAfter {
				delete(rl.entries, addr)
			}
		}
		rl.lastPrune = now
	}

	e, ok := rl.entries[ip]
	if !ok {
		e = &ipLimiterEntry{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.entries[ip] = e
	}
	e.lastSeen = now
	return e.limiter
}

// Middleware rejects requests exceeding the per-IP budget with 429.
func (rl *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if !rl.get(ip).Allow() {
			http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
