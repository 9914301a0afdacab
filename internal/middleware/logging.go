package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/nexuslabs/nexus/internal/logging"
)

// Logging builds a request-logging middleware that writes one structured
// line per request, mirroring the teacher's use of Echo's built-in logger
// but routed through the shared zap-backed Logger so format/level match
// the rest of the server's logging.
func Logging(logger *logging.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			if logger == nil {
				return err
			}

			req := c.Request()
			logger.Info(req.Context(), "http request",
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
				zap.String("remote_ip", c.RealIP()),
			)
			return err
		}
	}
}
