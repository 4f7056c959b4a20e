// internal/apiclient/ratelimit.go
package apiclient

import (
	"fmt"
	"sync"
	"time"
)

// Default rate limiting configuration
const (
	DefaultMaxRequestsPerWindow = 100
	DefaultRateLimitWindow      = 60 * time.Second
)

// RateLimitError is returned when a host's fixed request window is
// exhausted. The request is rejected before any network call is made.
type RateLimitError struct {
	Host       string
	Limit      int
	Window     time.Duration
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s: %d requests per %s (retry after %s)",
		e.Host, e.Limit, e.Window, e.RetryAfter.Round(time.Millisecond))
}

// hostLimiter tracks a fixed request window per target hostname. The
// table is owned by one Client instance so tests can isolate state;
// expired windows are reset lazily on the next request.
type hostLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	hosts  map[string]*hostWindow
}

type hostWindow struct {
	start time.Time
	count int
}

func newHostLimiter(limit int, window time.Duration) *hostLimiter {
	if limit <= 0 {
		limit = DefaultMaxRequestsPerWindow
	}
	if window <= 0 {
		window = DefaultRateLimitWindow
	}
	return &hostLimiter{
		limit:  limit,
		window: window,
		hosts:  make(map[string]*hostWindow),
	}
}

// allow consumes one request slot for host, or returns a RateLimitError
// when the current window is full.
func (l *hostLimiter) allow(host string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, ok := l.hosts[host]
	if !ok || now.Sub(w.start) >= l.window {
		l.hosts[host] = &hostWindow{start: now, count: 1}
		return nil
	}

	if w.count >= l.limit {
		return &RateLimitError{
			Host:       host,
			Limit:      l.limit,
			Window:     l.window,
			RetryAfter: l.window - now.Sub(w.start),
		}
	}

	w.count++
	return nil
}

// remaining reports how many requests are left in the host's current
// window, for diagnostics.
func (l *hostLimiter) remaining(host string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.hosts[host]
	if !ok || time.Since(w.start) >= l.window {
		return l.limit
	}
	return l.limit - w.count
}
