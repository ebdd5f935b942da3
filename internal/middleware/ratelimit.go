package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	svcerrors "github.com/aiza-ai/platform/internal/errors"
	"github.com/aiza-ai/platform/internal/httputil"
	"github.com/aiza-ai/platform/pkg/logger"
)

// window is one token bucket budget, e.g. 60 requests per minute.
type window struct {
	name   string
	limit  int
	period time.Duration
}

type clientLimiter struct {
	buckets  []*rate.Limiter
	lastSeen time.Time
}

// RateLimiter enforces per-client request budgets over a minute and an hour.
type RateLimiter struct {
	windows  []window
	limiters map[string]*clientLimiter
	mu       sync.Mutex
	idleTTL  time.Duration
	now      func() time.Time
	logger   *logger.Logger
}

// NewRateLimiter creates a new rate limiter. A non-positive limit disables
// that window.
func NewRateLimiter(perMinute, perHour int, log *logger.Logger) *RateLimiter {
	var windows []window
	if perMinute > 0 {
		windows = append(windows, window{name: "minute", limit: perMinute, period: time.Minute})
	}
	if perHour > 0 {
		windows = append(windows, window{name: "hour", limit: perHour, period: time.Hour})
	}
	return &RateLimiter{
		windows:  windows,
		limiters: make(map[string]*clientLimiter),
		idleTTL:  time.Hour,
		now:      time.Now,
		logger:   log,
	}
}

// getLimiter returns the buckets for the given key, creating them on first use.
func (rl *RateLimiter) getLimiter(key string, now time.Time) *clientLimiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, exists := rl.limiters[key]
	if !exists {
		cl = &clientLimiter{buckets: make([]*rate.Limiter, len(rl.windows))}
		for i, w := range rl.windows {
			cl.buckets[i] = rate.NewLimiter(rate.Every(w.period/time.Duration(w.limit)), w.limit)
		}
		rl.limiters[key] = cl
	}
	cl.lastSeen = now
	return cl
}

// allow takes one token from every window. When any window is exhausted no
// token is kept and the exhausted window and wait time are returned.
func (rl *RateLimiter) allow(key string) (bool, window, time.Duration) {
	now := rl.now()
	cl := rl.getLimiter(key, now)

	reservations := make([]*rate.Reservation, 0, len(cl.buckets))
	cancelAll := func() {
		for _, res := range reservations {
			res.CancelAt(now)
		}
	}

	for i, b := range cl.buckets {
		res := b.ReserveN(now, 1)
		reservations = append(reservations, res)
		if delay := res.DelayFrom(now); delay > 0 {
			cancelAll()
			return false, rl.windows[i], delay
		}
	}
	return true, window{}, 0
}

// Handler returns the rate limiting middleware handler
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	if len(rl.windows) == 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)

		ok, win, delay := rl.allow(key)
		if !ok {
			rl.logger.LogSecurityEvent(r.Context(), "rate_limit_exceeded", map[string]interface{}{
				"key":    key,
				"path":   r.URL.Path,
				"method": r.Method,
				"window": win.name,
			})

			retry := int(math.Ceil(delay.Seconds()))
			httputil.WriteServiceError(w, svcerrors.RateLimitExceeded(win.limit, win.name, retry))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Cleanup drops clients idle for longer than the idle TTL.
func (rl *RateLimiter) Cleanup() {
	cutoff := rl.now().Add(-rl.idleTTL)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, cl := range rl.limiters {
		if cl.lastSeen.Before(cutoff) {
			delete(rl.limiters, key)
		}
	}
}

// StartCleanup runs Cleanup every interval until ctx is done.
func (rl *RateLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.Cleanup()
			}
		}
	}()
}

// clientKey identifies the caller by remote host.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
