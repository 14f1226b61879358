package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"nutrivision/internal/coaching"
	"nutrivision/internal/config"
	"nutrivision/internal/gemini"
	"nutrivision/internal/metrics"
	"nutrivision/internal/ratelimit"
	"nutrivision/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Missing API key is a fatal startup condition with operator-facing
		// instructions, never a per-request error.
		fmt.Fprintln(os.Stderr, config.MissingKeyHelp)
		os.Exit(1)
	}

	client := gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	limiter := ratelimit.New(ratelimit.Config{})
	coach := coaching.NewHandler(coaching.NewService(client))
	apiServer := server.NewServer(cfg, coach, limiter)

	log.Info().
		Int("port", cfg.Port).
		Str("model", cfg.GeminiModel).
		Msg("Starting coaching API server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return metrics.Serve(gctx, log.Logger, fmt.Sprintf(":%d", cfg.MetricsPort))
	})

	g.Go(func() error {
		// Wait for the interrupt signal, then give in-flight requests five
		// seconds to finish.
		<-gctx.Done()
		log.Info().Msg("shutting down gracefully, press Ctrl+C again to force")
		stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("Server exited with error")
	}
	log.Info().Msg("Graceful shutdown complete")
}
