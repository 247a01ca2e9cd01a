// Package main runs the user lookup service: it loads the profile's config,
// wires the object graph with samber/do, serves HTTP, and drains on
// SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/do/v2"

	adapthttp "github.com/jsamuelsen11/user-lookup-service/internal/adapters/http"
	"github.com/jsamuelsen11/user-lookup-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen11/user-lookup-service/internal/adapters/storage/sqlstore"
	"github.com/jsamuelsen11/user-lookup-service/internal/platform/config"
	"github.com/jsamuelsen11/user-lookup-service/internal/platform/logging"
	"github.com/jsamuelsen11/user-lookup-service/internal/ports"
)

const (
	drainTimeout = 15 * time.Second
	flushTimeout = 5 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "user-lookup-service: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	profile := os.Getenv("APP_PROFILE")
	if profile == "" {
		return errors.New("APP_PROFILE must name a config profile (local, dev, qa, prod)")
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otel, err := initTelemetry(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	injector := do.New()
	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger)
	do.ProvideValue(injector, otel.metrics)
	provide(injector, cfg, logger)

	server, err := do.Invoke[*adapthttp.Server](injector)
	if err != nil {
		otel.flush(logger)
		return fmt.Errorf("resolving server: %w", err)
	}
	store := do.MustInvoke[*sqlstore.Store](injector)
	do.MustInvoke[ports.HealthRegistry](injector).Register(store)

	release := func() {
		if err := store.Close(); err != nil {
			logger.Error("closing store", slog.Any("error", err))
		}
		otel.flush(logger)
	}

	hooks := do.MustInvoke[*middleware.Pipeline](injector)
	if err := hooks.Ignite(ctx); err != nil {
		release()
		return fmt.Errorf("igniting hooks: %w", err)
	}
	server.OnLaunch(func(addr net.Addr) {
		logger.Info("accepting connections", slog.String("addr", addr.String()), slog.String("profile", profile))
		hooks.Liftoff(ctx)
	})

	serveErr := serve(ctx, server, logger)
	release()
	if serveErr != nil {
		return serveErr
	}

	logger.Info("shut down gracefully")
	return nil
}

// serve blocks until ctx is cancelled by a signal or the server fails on its
// own, then drains in-flight requests.
func serve(ctx context.Context, server *adapthttp.Server, logger *slog.Logger) error {
	stopped := make(chan error, 1)
	go func() { stopped <- server.Start() }()

	select {
	case err := <-stopped:
		if err == nil {
			err = errors.New("stopped without a shutdown request")
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
	defer cancel()

	if err := server.Shutdown(drainCtx); err != nil {
		logger.Error("draining requests", slog.Any("error", err))
	}
	return <-stopped
}
