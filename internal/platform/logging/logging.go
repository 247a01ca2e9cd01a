// Package logging builds the service's slog logger and carries request-scoped
// loggers through context.
//
// Handlers and services log through the request logger so every line carries
// the trace_id set by the logging middleware:
//
//	logging.FromContext(ctx).ErrorContext(ctx, "user lookup failed",
//	    slog.String("operation", "GetUser"),
//	    slog.String("user_id", id.String()),
//	    slog.Any("error", err),
//	)
//
// Error lines name the operation and the entity, and attach the whole error
// chain under "error".
package logging

import (
	"context"
	"io"
	"log/slog"
)

type contextKey struct{}

// New returns a logger writing to w. level is any name slog accepts ("debug",
// "WARN", "info+2"); anything else means info. format "text" selects the
// text handler and everything else JSON. Debug loggers also report the
// source location. Every handler redacts credentials before writing.
func New(level, format string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:       lvl,
		AddSource:   lvl <= slog.LevelDebug,
		ReplaceAttr: newRedactAttr(),
	}

	if format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger stored by WithLogger, or slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
