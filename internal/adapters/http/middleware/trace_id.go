package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/jsamuelsen11/user-lookup-service/internal/domain"
)

// HeaderTraceID carries the per-request trace identifier on both the request
// and the response.
const HeaderTraceID = "X-TRACE-ID"

// ErrMissingTraceID is returned at response time when the request context
// has no trace ID, meaning the request phase never ran for this request.
var ErrMissingTraceID = fmt.Errorf("%w: trace id missing from request context", domain.ErrInconsistent)

// traceIDKey is the context key for storing trace IDs.
type traceIDKey struct{}

// WithTraceID returns a new context with the given trace ID stored in it.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, id)
}

// TraceIDFromContext extracts the trace ID from the context.
// Returns an empty string if no trace ID is stored.
func TraceIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(traceIDKey{}).(string); ok {
		return id
	}
	return ""
}

// TraceID tags every request with a fresh UUID v4 and echoes it on the
// response. Client-supplied X-TRACE-ID values are replaced.
type TraceID struct {
	newID func() string
}

// NewTraceID creates a TraceID hook generating random UUIDs.
func NewTraceID() *TraceID {
	return &TraceID{newID: uuid.NewString}
}

// Name identifies the hook in logs.
func (*TraceID) Name() string { return "trace-id" }

// OnRequest stores a new ID in the request context and header. The request
// is cloned so the caller's header map is left untouched.
func (t *TraceID) OnRequest(r *http.Request) *http.Request {
	id := t.newID()
	r = r.Clone(WithTraceID(r.Context(), id))
	r.Header.Set(HeaderTraceID, id)
	return r
}

// OnResponse copies the request's ID onto the response, overwriting any value
// a handler set.
func (*TraceID) OnResponse(r *http.Request, h http.Header) error {
	id := TraceIDFromContext(r.Context())
	if id == "" {
		return ErrMissingTraceID
	}
	h.Set(HeaderTraceID, id)
	return nil
}
