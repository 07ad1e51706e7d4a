package server

import (
	"sync"
	"time"
)

const rateWindow = time.Minute

// RateLimiter enforces a per-client sliding window over the last minute.
// A background goroutine evicts clients that have gone quiet.
type RateLimiter struct {
	mu           sync.Mutex
	clients      map[string][]time.Time
	maxPerMinute int
	stopCleanup  chan struct{}
	stopOnce     sync.Once
}

// NewRateLimiter creates a limiter allowing maxPerMinute requests per client.
// A non-positive limit disables limiting.
func NewRateLimiter(maxPerMinute int) *RateLimiter {
	rl := &RateLimiter{
		clients:      make(map[string][]time.Time),
		maxPerMinute: maxPerMinute,
		stopCleanup:  make(chan struct{}),
	}
	go rl.cleanupLoop(5 * time.Minute)
	return rl
}

// Allow reports whether a request from the given client may proceed and
// records it if so.
func (rl *RateLimiter) Allow(client string) bool {
	if rl.maxPerMinute <= 0 {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	recent := pruneOld(rl.clients[client], now)

	if len(recent) >= rl.maxPerMinute {
		rl.clients[client] = recent
		return false
	}

	rl.clients[client] = append(recent, now)
	return true
}

// RetryAfter returns the seconds until the client's oldest recorded request
// leaves the window. Zero when the client is not limited.
func (rl *RateLimiter) RetryAfter(client string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	recent := rl.clients[client]
	if len(recent) == 0 {
		return 0
	}

	wait := rateWindow - time.Since(recent[0])
	if wait <= 0 {
		return 0
	}
	return int((wait + time.Second - 1) / time.Second)
}

// Stop terminates the background cleanup goroutine. Safe to call twice.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCleanup) })
}

func (rl *RateLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for client, stamps := range rl.clients {
		recent := pruneOld(stamps, now)
		if len(recent) == 0 {
			delete(rl.clients, client)
		} else {
			rl.clients[client] = recent
		}
	}
}

func pruneOld(stamps []time.Time, now time.Time) []time.Time {
	recent := stamps[:0]
	for _, t := range stamps {
		if now.Sub(t) < rateWindow {
			recent = append(recent, t)
		}
	}
	return recent
}
