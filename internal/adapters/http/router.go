// Package http provides the inbound HTTP adapter including routing and server lifecycle.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jsamuelsen11/user-lookup-service/internal/adapters/http/handlers"
)

// NewRouter creates an HTTP handler with all application routes registered.
// Middleware is applied globally in the order given. Unknown paths and
// unsupported methods both get the plain-text not-found fallback.
func NewRouter(
	userHandler *handlers.UserHandler,
	healthHandler *handlers.HealthHandler,
	middlewares ...func(http.Handler) http.Handler,
) http.Handler {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.NotFound)

	// Health endpoints.
	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	// User lookups.
	r.Get("/user/{"+handlers.ParamID+"}", userHandler.GetUser)
	r.Get("/users/{"+handlers.ParamNameGrade+"}", userHandler.SearchUsers)

	return r
}
