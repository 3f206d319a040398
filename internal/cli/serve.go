package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/cpsdqs/prechoster"
	"github.com/cpsdqs/prechoster/internal/runtime"
	httpadapter "github.com/cpsdqs/prechoster/pkg/adapters/http"
	"github.com/cpsdqs/prechoster/pkg/observability"
	"github.com/cpsdqs/prechoster/pkg/plugin"
	"github.com/cpsdqs/prechoster/pkg/plugins"
	"github.com/cpsdqs/prechoster/pkg/session"
)

// ShutdownTimeout bounds how long in-flight requests may finish on stop.
const ShutdownTimeout = 5 * time.Second

// NewHandler wires the HTTP API over backend. Metrics are registered on reg.
func NewHandler(backend *Backend, reg *prometheus.Registry, logger *slog.Logger) http.Handler {
	metrics := observability.NewMetrics(reg)

	registry := plugin.NewRegistry(plugin.WithLogger(logger))
	plugins.RegisterBuiltins(registry, backend.Blobs)

	engine := runtime.NewEngine(registry,
		runtime.WithLogger(logger),
		runtime.WithHooks(metrics.Hooks().Merge(observability.LoggingHooks(logger))),
	)

	sessionOpts := []session.Option{session.WithLogger(logger)}
	if backend.Locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(backend.Locker))
	}
	docs := session.NewManager(backend.Store, sessionOpts...)

	srv := httpadapter.NewServer(docs, engine, registry,
		httpadapter.WithLogger(logger),
		httpadapter.WithMetrics(reg),
		httpadapter.WithVersion(prechoster.Version),
	)
	return srv.Handler()
}

// Serve runs the HTTP API on addr until ctx is done, then shuts down
// gracefully.
func Serve(ctx context.Context, cfg Config, addr string, logger *slog.Logger) error {
	backend, err := OpenBackend(cfg, logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv := &http.Server{
		Addr:              addr,
		Handler:           NewHandler(backend, reg, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr, "store", cfg.Store)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
		return fmt.Errorf("graceful shutdown did not complete in %v: %w", ShutdownTimeout, err)
	}
	return nil
}
