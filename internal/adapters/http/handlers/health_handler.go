package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen11/user-lookup-service/internal/platform/logging"
	"github.com/jsamuelsen11/user-lookup-service/internal/ports"
)

const (
	healthBody = "Ok"

	statusOK       = "ok"
	statusFailing  = "failing"
	statusReady    = "ready"
	statusNotReady = "not_ready"
)

// HealthHandler handles the plain health check plus liveness and readiness
// endpoints.
type HealthHandler struct {
	registry ports.HealthRegistry
}

// NewHealthHandler creates a new HealthHandler with the given health registry.
func NewHealthHandler(registry ports.HealthRegistry) *HealthHandler {
	return &HealthHandler{registry: registry}
}

// Health handles GET /health with a plain-text "Ok". It never touches the
// database.
func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, healthBody)
}

// Liveness handles GET /health/live. Always returns 200 OK.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": statusOK})
}

// Readiness handles GET /health/ready: 200 when every check passes, 503
// otherwise. Each check is reported as "ok" or "failing"; the cause is logged
// and never sent, since ping errors can name hosts and drivers.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	results := h.registry.CheckAll(ctx)

	checks := make(map[string]string, len(results))
	healthy := true
	for name, err := range results {
		if err == nil {
			checks[name] = statusOK
			continue
		}
		healthy = false
		checks[name] = statusFailing
		logging.FromContext(ctx).WarnContext(ctx, "readiness check failed",
			slog.String("check", name),
			slog.Any("error", err),
		)
	}

	status, code := statusReady, http.StatusOK
	if !healthy {
		status, code = statusNotReady, http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]any{
		"status": status,
		"checks": checks,
	})
}
