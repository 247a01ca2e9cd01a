package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen11/user-lookup-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/user-lookup-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen11/user-lookup-service/internal/domain"
)

// recordingHook implements every phase and records calls into a shared log.
type recordingHook struct {
	name       string
	log        *[]string
	startupErr error
}

func (h *recordingHook) Name() string { return h.name }

func (h *recordingHook) OnStartup(context.Context) error {
	*h.log = append(*h.log, h.name+":startup")
	return h.startupErr
}

func (h *recordingHook) OnLaunch(context.Context) {
	*h.log = append(*h.log, h.name+":launch")
}

func (h *recordingHook) OnRequest(r *http.Request) *http.Request {
	*h.log = append(*h.log, h.name+":request")
	return r
}

func (h *recordingHook) OnResponse(_ *http.Request, hdr http.Header) error {
	*h.log = append(*h.log, h.name+":response")
	hdr.Add("X-Hook-Order", h.name)
	return nil
}

// requestOnlyHook implements a single phase.
type requestOnlyHook struct{ calls int }

func (*requestOnlyHook) Name() string { return "request-only" }

func (h *requestOnlyHook) OnRequest(r *http.Request) *http.Request {
	h.calls++
	return r
}

// failingResponseHook always fails at response time.
type failingResponseHook struct{}

func (failingResponseHook) Name() string { return "failing" }

func (failingResponseHook) OnResponse(*http.Request, http.Header) error {
	return domain.ErrInconsistent
}

func TestPipeline_RegistrationOrderIsExecutionOrder(t *testing.T) {
	t.Parallel()

	var calls []string
	p := middleware.NewPipeline(discardLogger())
	p.Register(
		&recordingHook{name: "a", log: &calls},
		&recordingHook{name: "b", log: &calls},
	)

	require.NoError(t, p.Ignite(context.Background()))
	p.Liftoff(context.Background())

	handler := p.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls = append(calls, "handler")
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	assert.Equal(t, []string{
		"a:startup", "b:startup",
		"a:launch", "b:launch",
		"a:request", "b:request",
		"handler",
		"a:response", "b:response",
	}, calls)
	assert.Equal(t, []string{"a", "b"}, rec.Header().Values("X-Hook-Order"))
}

func TestPipeline_IgniteStopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	var calls []string
	boom := errors.New("boom")
	p := middleware.NewPipeline(discardLogger())
	p.Register(
		&recordingHook{name: "a", log: &calls, startupErr: boom},
		&recordingHook{name: "b", log: &calls},
	)

	err := p.Ignite(context.Background())

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "startup hook a")
	assert.Equal(t, []string{"a:startup"}, calls)
}

func TestPipeline_SkipsPhasesHookDoesNotImplement(t *testing.T) {
	t.Parallel()

	hook := &requestOnlyHook{}
	p := middleware.NewPipeline(nil)
	p.Register(hook)

	require.NoError(t, p.Ignite(context.Background()))
	p.Liftoff(context.Background())

	handler := p.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	assert.Equal(t, 1, hook.calls)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestPipeline_ResponseHooksRunOnErrorPaths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    int
	}{
		{
			name: "bad request",
			handler: func(w http.ResponseWriter, r *http.Request) {
				dto.WriteErrorResponse(w, r, &domain.ValidationError{Fields: map[string]string{"age": domain.MsgRequired}})
			},
			want: http.StatusBadRequest,
		},
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				dto.WriteErrorResponse(w, r, domain.ErrNotFound)
			},
			want: http.StatusNotFound,
		},
		{
			name: "forbidden",
			handler: func(w http.ResponseWriter, r *http.Request) {
				dto.WriteErrorResponse(w, r, domain.ErrForbidden)
			},
			want: http.StatusForbidden,
		},
		{
			name: "backend failure",
			handler: func(w http.ResponseWriter, r *http.Request) {
				dto.WriteErrorResponse(w, r, &domain.BackendError{Op: "Search", Cause: domain.CauseBackend, Err: errors.New("down")})
			},
			want: http.StatusInternalServerError,
		},
		{
			name: "panic",
			handler: func(http.ResponseWriter, *http.Request) {
				panic("boom")
			},
			want: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := middleware.NewPipeline(discardLogger())
			p.Register(middleware.NewTraceID(), middleware.NewCustomTag(dto.CustomIDDefault))

			var seen string
			inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = r.Header.Get(middleware.HeaderTraceID)
				tt.handler(w, r)
			})
			handler := p.Handler(middleware.Recovery(discardLogger())(middleware.Timeout(time.Second)(inner)))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/x_1", http.NoBody))

			assert.Equal(t, tt.want, rec.Code)
			require.NotEmpty(t, seen)
			assert.Equal(t, seen, rec.Header().Get(middleware.HeaderTraceID))
			assert.Equal(t, dto.CustomIDDefault, rec.Header().Get(dto.HeaderCustomID))
		})
	}
}

func TestPipeline_FailingResponseHookBecomes500(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := middleware.NewPipeline(testLogger(&buf))
	p.Register(middleware.NewTraceID(), failingResponseHook{}, middleware.NewCustomTag(dto.CustomIDDefault))

	handler := p.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Leak", "yes")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("should not be sent"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user/x", http.NoBody))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Leak"))
	assert.NotContains(t, rec.Body.String(), "should not be sent")
	assert.NotEmpty(t, rec.Header().Get(middleware.HeaderTraceID))
	assert.Equal(t, dto.CustomIDDefault, rec.Header().Get(dto.HeaderCustomID))

	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "internal server error", body.Detail)
	assert.True(t, strings.Contains(buf.String(), "response hook failed"))
}
