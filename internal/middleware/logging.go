package middleware

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/octobees/decisionfindr/api/internal/logging"
)

// Logging writes a concise structured line for each HTTP request.
func Logging(logger *slog.Logger) echo.MiddlewareFunc {
	logger = logging.OrDefault(logger)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			latency := time.Since(start)

			if err != nil {
				c.Error(err)
			}

			rid, _ := c.Get(ContextKeyRequestID).(string)
			attrs := []any{
				"request_id", rid,
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"latency", latency.String(),
			}
			if uid := UserIDFromContext(c); uid != "" {
				attrs = append(attrs, "user_id", uid)
			}
			if err != nil {
				logger.Warn("request failed", append(attrs, "error", err.Error())...)
			} else {
				logger.Info("request", attrs...)
			}

			return err
		}
	}
}
