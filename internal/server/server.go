/*
Package server implements the application's network transport layer.
It initializes the HTTP server, configures timeouts, and wires the coaching
handlers, rate limiter and health endpoints into the router.
*/
package server

import (
	"fmt"
	"net/http"
	"time"

	"nutrivision/internal/coaching"
	"nutrivision/internal/config"
	"nutrivision/internal/ratelimit"
)

// Server holds the dependencies the route handlers need.
type Server struct {
	// cfg is the process configuration; /health reports from it.
	cfg *config.Config

	// coach exposes the coaching endpoints.
	coach *coaching.Handler

	// limiter performs per-client admission control on the expensive routes.
	limiter *ratelimit.Limiter

	// started anchors the uptime reported by /health/system.
	started time.Time
}

// NewServer returns a configured *http.Server with production-ready network
// timeouts.
func NewServer(cfg *config.Config, coach *coaching.Handler, limiter *ratelimit.Limiter) *http.Server {
	app := &Server{
		cfg:     cfg,
		coach:   coach,
		limiter: limiter,
		started: time.Now(),
	}

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      app.RegisterRoutes(),
		IdleTimeout:  time.Minute,      // Time to wait for the next request on keep-alive connections.
		ReadTimeout:  10 * time.Second, // Maximum duration for reading the entire request.
		WriteTimeout: 30 * time.Second, // Maximum duration before timing out writes of the response.
	}
}
