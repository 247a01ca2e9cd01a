package middleware_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen11/user-lookup-service/internal/adapters/http/middleware"
)

// tracer returns a middleware that appends enter/leave markers to log.
func tracer(name string, log *[]string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*log = append(*log, "enter "+name)
			next.ServeHTTP(w, r)
			*log = append(*log, "leave "+name)
		})
	}
}

func TestChain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		layers []string
		want   []string
	}{
		{
			name: "no middleware",
			want: []string{"handler"},
		},
		{
			name:   "single",
			layers: []string{"recovery"},
			want:   []string{"enter recovery", "handler", "leave recovery"},
		},
		{
			name:   "first argument is outermost",
			layers: []string{"recovery", "otel", "logging"},
			want: []string{
				"enter recovery", "enter otel", "enter logging",
				"handler",
				"leave logging", "leave otel", "leave recovery",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var log []string
			mws := make([]func(http.Handler) http.Handler, 0, len(tc.layers))
			for _, name := range tc.layers {
				mws = append(mws, tracer(name, &log))
			}

			h := middleware.Chain(mws...)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				log = append(log, "handler")
			}))
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/user/1", http.NoBody))

			assert.Equal(t, tc.want, log)
		})
	}
}

func TestChain_ServiceStack(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := testLogger(&buf)

	p := middleware.NewPipeline(logger)
	p.Register(middleware.NewTraceID(), middleware.NewCustomTag("CUSTOM"))

	var seen string
	h := p.Handler(middleware.Chain(
		middleware.Recovery(logger),
		middleware.OpenTelemetry(nil),
		middleware.Logging(logger),
		middleware.Timeout(5*time.Second),
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.TraceIDFromContext(r.Context())
		_, _ = w.Write([]byte("Found user: john"))
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user/1", http.NoBody))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Found user: john", rec.Body.String())
	require.NotEmpty(t, seen, "trace ID not visible to the handler")
	assert.Equal(t, seen, rec.Header().Get(middleware.HeaderTraceID))
	assert.Contains(t, buf.String(), "request started")
	assert.Contains(t, buf.String(), "request completed")
	assert.Contains(t, buf.String(), seen)
}
