package server

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"

	"nutrivision/internal/coaching"
	"nutrivision/internal/metrics"
	"nutrivision/internal/ratelimit"
)

const serviceName = "nutrivision-gemini-coaching"

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true

	e.Use(LoggerMiddleware)
	e.Use(RecoverMiddleware)
	e.Use(MetricsMiddleware)

	e.HTTPErrorHandler = jsonErrorHandler

	e.GET("/health", s.healthHandler)
	e.GET("/health/system", s.systemHealthHandler)

	// The coaching endpoints share the default day/hour quotas and carry
	// their own burst windows; batch is tighter since it amplifies upstream
	// calls. The quick endpoint is local-only and unlimited.
	e.POST("/coaching", s.coach.TipHandler,
		ratelimit.Middleware(s.limiter, "coaching", 10))
	e.POST("/coaching/batch", s.coach.BatchHandler,
		ratelimit.Middleware(s.limiter, "coaching_batch", 2))
	e.POST("/coaching/quick", s.coach.QuickTipHandler)

	return e
}

// healthHandler reports service identity and whether the provider key was
// loaded at startup.
func (s *Server) healthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":         "ok",
		"service":        serviceName,
		"model":          s.cfg.GeminiModel,
		"api_key_loaded": s.cfg.GeminiAPIKey != "",
	})
}

// systemHealthHandler reports process uptime and host load.
func (s *Server) systemHealthHandler(c echo.Context) error {
	v, _ := mem.VirtualMemory()
	cpuPercent, _ := cpu.Percent(0, false)

	cpuLoad := 0.0
	if len(cpuPercent) > 0 {
		cpuLoad = cpuPercent[0]
	}
	ramUsage := 0.0
	if v != nil {
		ramUsage = v.UsedPercent
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":    "ok",
		"uptime":    time.Since(s.started).Round(time.Second).String(),
		"cpu_load":  fmt.Sprintf("%.1f%%", cpuLoad),
		"ram_usage": fmt.Sprintf("%.1f%%", ramUsage),
	})
}

// jsonErrorHandler keeps every error response JSON-shaped. Unknown routes get
// the canonical not-found body; anything unexpected becomes a 500 with a
// generic encouragement tip and no internal detail.
func jsonErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code == http.StatusNotFound {
			c.JSON(http.StatusNotFound, map[string]any{"error": "Endpoint not found"})
			return
		}
		c.JSON(he.Code, map[string]any{
			"error":  fmt.Sprintf("%v", he.Message),
			"status": "error",
		})
		return
	}

	log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("Unhandled request error")
	c.JSON(http.StatusInternalServerError, map[string]any{
		"error":        "Internal server error",
		"status":       "error",
		"coaching_tip": coaching.GenericEncouragement,
	})
}

// LoggerMiddleware attaches a request-scoped zerolog logger keyed by request
// ID, echoing the ID back to the client.
func LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Response().Header().Set("X-Request-ID", requestID)

		logger := log.With().Str("request_id", requestID).Logger()

		c.Set("logger", &logger)

		return next(c)
	}
}

// RecoverMiddleware converts a panicking handler into the generic 500
// response. The stack stays in the log; response bodies never carry
// diagnostic detail.
func RecoverMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Interface("panic", r).
					Bytes("stack", debug.Stack()).
					Msg("Handler panicked")
				if !c.Response().Committed {
					c.JSON(http.StatusInternalServerError, map[string]any{
						"error":        "Internal server error",
						"status":       "error",
						"coaching_tip": coaching.GenericEncouragement,
					})
				}
			}
		}()
		return next(c)
	}
}

// MetricsMiddleware records request counts and latency per route.
func MetricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		endpoint := c.Path()
		metrics.RequestLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		metrics.RequestTotal.WithLabelValues(endpoint, strconv.Itoa(c.Response().Status)).Inc()

		return err
	}
}
