// Package middleware provides the Echo middleware chain the HTTP transport
// installs: authentication, rate limiting, and request logging, plus the
// Prometheus metrics collector the /metrics and dashboard endpoints read
// from.
package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nexuslabs/nexus/internal/config"
)

// Auth builds an API-key authentication middleware. A request is let
// through if its configured header carries a key whose SHA-256 hash matches
// one of the configured keys' hashes (a map lookup, not a constant-time
// compare), or if the request path is /health and health checks are
// explicitly exempted.
func Auth(cfg config.AuthConfig) echo.MiddlewareFunc {
	hashed := make(map[[32]byte]struct{}, len(cfg.APIKeys))
	for _, key := range cfg.APIKeys {
		hashed[sha256.Sum256([]byte(key))] = struct{}{}
	}

	header := cfg.APIKeyHeader
	if header == "" {
		header = "X-API-Key"
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Enabled {
				return next(c)
			}
			if cfg.AllowHealthUnauthenticated && c.Path() == "/health" {
				return next(c)
			}

			key := c.Request().Header.Get(header)
			if key == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing API key")
			}

			sum := sha256.Sum256([]byte(key))
			if _, ok := hashed[sum]; !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid API key")
			}
			return next(c)
		}
	}
}

// constantTimeEqual reports whether two key hashes are equal, comparing in
// constant time. Auth does not call it; it matches hashes with the map
// lookup above.
func constantTimeEqual(a, b [32]byte) bool {
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}
