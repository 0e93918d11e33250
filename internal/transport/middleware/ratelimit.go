package middleware

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/internal/transport"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

// Limiter decides whether key may make another request. retryAfter is only
// meaningful when allowed is false.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// RateLimit rejects callers over their budget with 429 and Retry-After.
// Limiter errors fail open.
func RateLimit(limiter Limiter, logger *slog.Logger) func(http.Handler) http.Handler {
	base := transport.NewBaseHandler(logger)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			allowed, retryAfter, err := limiter.Allow(r.Context(), ip)
			if err != nil {
				logger.WarnContext(r.Context(), "rate limiter unavailable, allowing request", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				seconds := int(math.Ceil(retryAfter.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				logger.WarnContext(r.Context(), "rate limit exceeded", "client_ip", ip, "path", r.URL.Path, "retry_after", seconds)
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				base.HandleServiceError(w, internal.NewRateLimitError("too many requests, retry later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LocalLimiter keeps one token bucket per key in an expiring LRU, so idle
// clients age out and the key space stays bounded.
type LocalLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	buckets *expirable.LRU[string, *rate.Limiter]
}

func NewLocalLimiter(requestsPerMinute, burst, size int) *LocalLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 30
	}
	if burst <= 0 {
		burst = 1
	}
	if size <= 0 {
		size = 10000
	}
	return &LocalLimiter{
		limit:   rate.Every(time.Minute / time.Duration(requestsPerMinute)),
		burst:   burst,
		buckets: expirable.NewLRU[string, *rate.Limiter](size, nil, 10*time.Minute),
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	l.mu.Lock()
	bucket, ok := l.buckets.Get(key)
	if !ok {
		bucket = rate.NewLimiter(l.limit, l.burst)
		l.buckets.Add(key, bucket)
	}
	l.mu.Unlock()

	now := time.Now()
	reservation := bucket.ReserveN(now, 1)
	if !reservation.OK() {
		return false, time.Minute, nil
	}
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return false, delay, nil
	}
	return true, 0, nil
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		if r.RemoteAddr == "" {
			return "unknown"
		}
		return r.RemoteAddr
	}
	return host
}
