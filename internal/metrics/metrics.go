package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Service-wide metrics.
var (
	// RequestTotal counts API requests by endpoint and HTTP status.
	RequestTotal = Counter(
		"nutrivision_requests_total",
		"Total number of API requests",
		"endpoint", "status",
	)

	// RequestLatency tracks API request latency per endpoint.
	RequestLatency = Histogram(
		"nutrivision_request_latency_seconds",
		"Latency of API requests in seconds",
		prometheus.DefBuckets,
		"endpoint",
	)

	// TipTotal counts coaching tips by outcome status
	// (success, quota_fallback, fallback, error).
	TipTotal = Counter(
		"nutrivision_tips_total",
		"Total number of coaching tips by outcome",
		"status",
	)

	// RateLimitedTotal counts requests rejected by admission control.
	RateLimitedTotal = Counter(
		"nutrivision_rate_limited_total",
		"Total number of requests rejected by the rate limiter",
		"endpoint",
	)
)

func Counter(name, help string, labelKeys ...string) *prometheus.CounterVec {
	return promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: name,
			Help: help,
		},
		labelKeys,
	)
}

func Histogram(name, help string, buckets []float64, labelKeys ...string) *prometheus.HistogramVec {
	return promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    name,
			Help:    help,
			Buckets: buckets,
		},
		labelKeys,
	)
}

// Serve runs the Prometheus exposition endpoint until ctx is canceled or the
// server fails. Intended to be launched on its own goroutine from main.
func Serve(ctx context.Context, logger zerolog.Logger, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", addr).Msg("metrics server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
