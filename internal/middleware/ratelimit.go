package middleware

import (
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/nexuslabs/nexus/internal/config"
)

// RateLimiter hands out one token-bucket limiter per client (keyed by
// remote IP), created lazily on first request.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

// NewRateLimiter builds a RateLimiter from the rate-limit config section.
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(cfg.RequestsPerSecond),
		burst:    cfg.BurstSize,
	}
}

func (rl *RateLimiter) limiterFor(client string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.limiters[client]
	if !ok {
		l = rate.NewLimiter(rl.rps, rl.burst)
		rl.limiters[client] = l
	}
	return l
}

// Allow reports whether the given client may make a request right now,
// consuming a token if so.
func (rl *RateLimiter) Allow(client string) bool {
	return rl.limiterFor(client).Allow()
}

// RateLimit builds the rate-limiting Echo middleware. It is a no-op
// pass-through when disabled in config.
func RateLimit(cfg config.RateLimitConfig) echo.MiddlewareFunc {
	limiter := NewRateLimiter(cfg)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Enabled {
				return next(c)
			}
			if !limiter.Allow(c.RealIP()) {
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
