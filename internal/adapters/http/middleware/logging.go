package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jsamuelsen11/user-lookup-service/internal/platform/logging"
)

// Logging brackets each request with "request started" and "request
// completed" lines. Downstream code gets a child logger tagged with the
// request's trace_id through logging.FromContext. At debug level the
// (redacted) request headers are logged too.
//
// Completions with a 5xx status are logged at warn; the cause itself is
// logged where it happened.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqLog := logger.With(slog.String("trace_id", TraceIDFromContext(r.Context())))
			ctx := logging.WithLogger(r.Context(), reqLog)

			target := []any{slog.String("method", r.Method), slog.String("path", r.URL.Path)}
			if r.URL.RawQuery != "" {
				target = append(target, slog.String("query", r.URL.RawQuery))
			}
			reqLog.InfoContext(ctx, "request started", target...)

			if reqLog.Enabled(ctx, slog.LevelDebug) {
				reqLog.LogAttrs(ctx, slog.LevelDebug, "request headers", RedactHeaders(r.Header)...)
			}

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r.WithContext(ctx))

			level := slog.LevelInfo
			if rw.statusCode >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			reqLog.Log(ctx, level, "request completed", append(target,
				slog.Int("status", rw.statusCode),
				slog.Int64("bytes", rw.written),
				slog.Duration("duration", time.Since(start)),
			)...)
		})
	}
}
