package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/octobees/decisionfindr/api/internal/config"
)

// maxTrackedLimiters bounds how many per-user buckets are held at once.
const maxTrackedLimiters = 10000

// RateLimiter applies a token bucket per user to the given route paths. Requests
// without a user share one bucket.
func RateLimiter(cfg config.RateLimitConfig, paths ...string) echo.MiddlewareFunc {
	if cfg.Requests <= 0 || cfg.Interval <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return next(c)
			}
		}
	}

	perRequest := cfg.Interval / time.Duration(cfg.Requests)
	if perRequest <= 0 {
		perRequest = time.Second
	}

	limited := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		limited[p] = struct{}{}
	}

	buckets := newLimiterSet(maxTrackedLimiters, cfg.Interval, func() *rate.Limiter {
		return rate.NewLimiter(rate.Every(perRequest), cfg.Requests)
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := limited[c.Path()]; !ok {
				return next(c)
			}
			if !buckets.get(UserIDFromContext(c)).Allow() {
				return deny(c, http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}

// limiterSet holds one bucket per key. A bucket idle for the whole interval has
// refilled, so it is dropped and recreated on next use.
type limiterSet struct {
	mu      sync.Mutex
	entries *expirable.LRU[string, *rate.Limiter]
	create  func() *rate.Limiter
}

func newLimiterSet(size int, idle time.Duration, create func() *rate.Limiter) *limiterSet {
	return &limiterSet{
		entries: expirable.NewLRU[string, *rate.Limiter](size, nil, idle),
		create:  create,
	}
}

func (s *limiterSet) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.entries.Get(key)
	if !ok {
		l = s.create()
	}
	// Re-adding refreshes the idle deadline.
	s.entries.Add(key, l)
	return l
}
