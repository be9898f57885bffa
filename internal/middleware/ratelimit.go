package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig holds configuration for the rate limiter middleware.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit (tokens added per second).
	RequestsPerSecond float64
	// Burst is the maximum number of requests allowed in a burst.
	Burst int
}

// ClientStore tracks per-client limiter state. Implementations own their
// eviction policy; callers drive it by invoking Sweep on their schedule.
type ClientStore interface {
	// Limiter returns the limiter for key, creating it on first sight.
	Limiter(key string) *rate.Limiter
	// Sweep evicts clients idle longer than maxIdle and reports how many
	// were removed.
	Sweep(maxIdle time.Duration) int
	// Reset drops all tracked clients.
	Reset()
}

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var _ ClientStore = (*LimiterStore)(nil)

// LimiterStore is the default in-memory ClientStore.
type LimiterStore struct {
	cfg RateLimitConfig

	mu      sync.Mutex
	clients map[string]*clientEntry
}

// NewLimiterStore creates an empty LimiterStore with the given limits.
func NewLimiterStore(cfg RateLimitConfig) *LimiterStore {
	return &LimiterStore{
		cfg:     cfg,
		clients: make(map[string]*clientEntry),
	}
}

// Limiter returns the limiter for key, creating it on first sight.
func (s *LimiterStore) Limiter(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.clients[key]; ok {
		entry.lastSeen = time.Now()
		return entry.limiter
	}

	limiter := rate.NewLimiter(rate.Limit(s.cfg.RequestsPerSecond), s.cfg.Burst)
	s.clients[key] = &clientEntry{limiter: limiter, lastSeen: time.Now()}
	return limiter
}

// Sweep evicts clients idle longer than maxIdle.
func (s *LimiterStore) Sweep(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, entry := range s.clients {
		if time.Since(entry.lastSeen) > maxIdle {
			delete(s.clients, key)
			removed++
		}
	}
	return removed
}

// Reset drops all tracked clients.
func (s *LimiterStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients = make(map[string]*clientEntry)
}

// Len returns the number of tracked clients.
func (s *LimiterStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// RateLimiter returns an HTTP middleware enforcing a per-client token-bucket
// rate limit keyed by client IP. When the limit is exceeded it responds 429
// with standard rate-limit headers. Eviction of idle clients is the caller's
// job via store.Sweep, typically on a cron schedule.
func RateLimiter(store ClientStore, burst int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter := store.Limiter(clientIP(r))

			reservation := limiter.Reserve()
			if !reservation.OK() {
				writeTooManyRequests(w, 0)
				return
			}

			if delay := reservation.Delay(); delay > 0 {
				reservation.Cancel()
				writeTooManyRequests(w, int(delay.Seconds())+1)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(burst))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Second).Unix(), 10))

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP extracts the client IP address from the request, stripping the
// port. Only RemoteAddr is used — X-Forwarded-For is untrusted and ignored
// to prevent rate-limit bypass via header spoofing.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeTooManyRequests(w http.ResponseWriter, retryAfterSecs int) {
	if retryAfterSecs > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSecs))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success":   false,
		"message":   "rate limit exceeded",
		"error":     "Too Many Requests",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
