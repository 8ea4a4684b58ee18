// Package mockapi is an in-memory implementation of the contacts backend. It
// speaks the same REST contract as the real service and backs the SDK's
// integration tests and local development.
package mockapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"addressbook/internal/platform/config"
	"addressbook/internal/platform/health"
	"addressbook/internal/platform/middleware"
)

const (
	// APIPrefix is where the auth and contacts routes are mounted.
	APIPrefix = "/api/v1"

	maxBodySize = 64 * 1024
)

// NewRouter builds the backend's HTTP handler. Metrics are registered on reg
// and served from /metrics.
func NewRouter(cfg config.MockAPI, logger *slog.Logger, reg *prometheus.Registry) http.Handler {
	store := NewStore()
	issuer := NewTokenIssuer(cfg.JWTSigningKey, cfg.TokenTTL, cfg.RefreshTokenTTL, cfg.SecurityTokenTTL)
	handler := NewHandler(store, issuer, logger)
	metrics := NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger, metrics.Record))
	r.Use(middleware.BodyLimit(maxBodySize))

	health.New("mockapi").Register(r)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Route(APIPrefix, handler.Register)
	return r
}

// Run serves the backend on cfg.Addr until ctx is cancelled, then shuts down
// gracefully.
func Run(ctx context.Context, cfg config.MockAPI, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(cfg, logger, prometheus.NewRegistry()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting mock backend", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down mock backend gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
