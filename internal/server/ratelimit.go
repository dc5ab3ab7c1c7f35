package server

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// Each chat message can fan out into several database queries and one paid
// model call, so the chat route carries a per-client token bucket.
type rateLimiter struct {
	mu             sync.Mutex
	clients        map[string]*bucket
	requestsPerMin int
	now            func() time.Time
}

type bucket struct {
	tokens     int
	lastRefill time.Time
}

func newRateLimiter(requestsPerMin int) *rateLimiter {
	return &rateLimiter{
		clients:        make(map[string]*bucket),
		requestsPerMin: requestsPerMin,
		now:            time.Now,
	}
}

// middleware rejects clients that exhausted their bucket with 429.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientKey(r)) {
			writeJSON(w, http.StatusTooManyRequests,
				errorResponse{Error: "rate limit exceeded, try again later"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (rl *rateLimiter) allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.clients[client]
	if !ok {
		rl.clients[client] = &bucket{tokens: rl.requestsPerMin - 1, lastRefill: now}
		rl.evictStale(now)
		return true
	}

	refill := int(now.Sub(b.lastRefill).Minutes() * float64(rl.requestsPerMin))
	if refill > 0 {
		b.tokens += refill
		if b.tokens > rl.requestsPerMin {
			b.tokens = rl.requestsPerMin
		}
		b.lastRefill = now
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}
	return false
}

// evictStale drops clients idle for over ten minutes. Called under the lock
// on the new-client path, which bounds the map without a background ticker.
func (rl *rateLimiter) evictStale(now time.Time) {
	for client, b := range rl.clients {
		if now.Sub(b.lastRefill) > 10*time.Minute {
			delete(rl.clients, client)
		}
	}
}
