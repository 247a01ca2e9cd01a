package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/jsamuelsen11/user-lookup-service/internal/platform/telemetry"
)

// VisitorCounter counts inbound requests for the life of the process. Every
// request is counted once, whatever its outcome.
type VisitorCounter struct {
	count   atomic.Uint64
	metrics *telemetry.Metrics
	logger  *slog.Logger
}

// NewVisitorCounter creates a counter at zero. If metrics is nil, only the
// in-process count is kept.
func NewVisitorCounter(metrics *telemetry.Metrics, logger *slog.Logger) *VisitorCounter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &VisitorCounter{metrics: metrics, logger: logger}
}

// Name identifies the hook in logs.
func (*VisitorCounter) Name() string { return "visitor-counter" }

// Count returns the number of requests seen so far.
func (c *VisitorCounter) Count() uint64 {
	return c.count.Load()
}

// OnStartup logs the current count before the listener opens.
func (c *VisitorCounter) OnStartup(ctx context.Context) error {
	c.logger.InfoContext(ctx, "setting up visitor counter", slog.Uint64("visitors", c.Count()))
	return nil
}

// OnLaunch logs once the server accepts connections.
func (c *VisitorCounter) OnLaunch(ctx context.Context) {
	c.logger.InfoContext(ctx, "visitor counter live")
}

// OnRequest increments the count and returns r unchanged.
func (c *VisitorCounter) OnRequest(r *http.Request) *http.Request {
	n := c.count.Add(1)
	ctx := r.Context()

	c.logger.DebugContext(ctx, "visitor counted", slog.Uint64("visitors", n))
	if c.metrics != nil {
		c.metrics.VisitorTotal.Add(ctx, 1)
	}
	return r
}
