package main

import (
	"fmt"
	"log/slog"
	nethttp "net/http"

	"github.com/samber/do/v2"

	adapthttp "github.com/jsamuelsen11/user-lookup-service/internal/adapters/http"
	"github.com/jsamuelsen11/user-lookup-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/user-lookup-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen11/user-lookup-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen11/user-lookup-service/internal/adapters/storage/sqlstore"
	"github.com/jsamuelsen11/user-lookup-service/internal/app"
	"github.com/jsamuelsen11/user-lookup-service/internal/platform/config"
	"github.com/jsamuelsen11/user-lookup-service/internal/platform/health"
	"github.com/jsamuelsen11/user-lookup-service/internal/platform/telemetry"
	"github.com/jsamuelsen11/user-lookup-service/internal/ports"
)

// provide registers lazy constructors for the whole graph. Nothing is built
// until the server is invoked.
func provide(injector do.Injector, cfg *config.Config, logger *slog.Logger) {
	// Storage.
	do.Provide(injector, func(i do.Injector) (*sqlstore.Store, error) {
		db, dialect, err := sqlstore.Open(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("opening store: %w", err)
		}
		guard := sqlstore.NewGuard(&cfg.Storage, logger)
		return sqlstore.New(db, dialect, guard, do.MustInvoke[*telemetry.Metrics](i), logger), nil
	})
	do.Provide(injector, func(i do.Injector) (ports.UserRepository, error) {
		return do.MustInvoke[*sqlstore.Store](i), nil
	})

	// Application.
	do.Provide(injector, func(i do.Injector) (ports.UserService, error) {
		return app.NewUserService(do.MustInvoke[ports.UserRepository](i), logger), nil
	})
	do.Provide(injector, func(do.Injector) (ports.HealthRegistry, error) {
		return health.New(), nil
	})

	// HTTP. Hooks run in registration order: count the visitor, assign the
	// trace ID, then default the custom tag.
	do.Provide(injector, func(i do.Injector) (*middleware.Pipeline, error) {
		p := middleware.NewPipeline(logger)
		p.Register(
			middleware.NewVisitorCounter(do.MustInvoke[*telemetry.Metrics](i), logger),
			middleware.NewTraceID(),
			middleware.NewCustomTag(dto.CustomIDDefault),
		)
		return p, nil
	})
	do.Provide(injector, func(i do.Injector) (*handlers.UserHandler, error) {
		return handlers.NewUserHandler(do.MustInvoke[ports.UserService](i)), nil
	})
	do.Provide(injector, func(i do.Injector) (*handlers.HealthHandler, error) {
		return handlers.NewHealthHandler(do.MustInvoke[ports.HealthRegistry](i)), nil
	})
	do.Provide(injector, func(i do.Injector) (nethttp.Handler, error) {
		router := adapthttp.NewRouter(
			do.MustInvoke[*handlers.UserHandler](i),
			do.MustInvoke[*handlers.HealthHandler](i),
			middleware.Chain(
				middleware.Recovery(logger),
				middleware.OpenTelemetry(do.MustInvoke[*telemetry.Metrics](i)),
				middleware.Logging(logger),
				middleware.Timeout(cfg.Server.WriteTimeout),
			),
		)
		return do.MustInvoke[*middleware.Pipeline](i).Handler(router), nil
	})
	do.Provide(injector, func(i do.Injector) (*adapthttp.Server, error) {
		return adapthttp.NewServer(cfg.Server, do.MustInvoke[nethttp.Handler](i), logger), nil
	})
}
