package ratelimit

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"nutrivision/internal/metrics"
)

// Middleware gates a route with the shared tiers plus an endpoint burst
// quota of perMinute requests (0 disables the burst tier). Rejections answer
// 429 before any handler logic runs.
func Middleware(l *Limiter, scope string, perMinute int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := ClientIdentity(c)
			if !l.Allow(identity, scope, perMinute) {
				metrics.RateLimitedTotal.WithLabelValues(scope).Inc()
				log.Warn().
					Str("client", identity).
					Str("endpoint", scope).
					Msg("Rate limit exceeded")
				return c.JSON(http.StatusTooManyRequests, map[string]any{
					"error":  "Rate limit exceeded",
					"status": "error",
				})
			}
			return next(c)
		}
	}
}

// ClientIdentity resolves the network address used to scope rate-limit
// counters. Proxy headers win over the direct peer address.
func ClientIdentity(c echo.Context) string {
	// X-Forwarded-For can be a list: "client, proxy1, proxy2"
	if xff := c.Request().Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}

	if realIP := c.Request().Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	return c.RealIP()
}
