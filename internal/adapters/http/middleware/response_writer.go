// Package middleware provides the inbound request pipeline: lifecycle hooks
// dispatched by Pipeline and the func(http.Handler) http.Handler middleware
// mounted on the router.
//
// A request passes through, in order:
//
//	Pipeline(request hooks) → Recovery → OpenTelemetry → Logging → Timeout → Handler → Pipeline(response hooks)
//
// Middleware can be composed using the Chain helper.
package middleware

import (
	"maps"
	"net/http"
	"sync"
)

// responseWriter wraps http.ResponseWriter to capture the status code and
// bytes written. It is used by recovery, otel, and logging middleware.
type responseWriter struct {
	http.ResponseWriter
	statusCode    int
	headerWritten bool
	written       int64
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

// WriteHeader captures the status code and delegates to the underlying writer.
// Only the first call takes effect; subsequent calls are ignored.
func (rw *responseWriter) WriteHeader(code int) {
	if rw.headerWritten {
		return
	}
	rw.statusCode = code
	rw.headerWritten = true
	rw.ResponseWriter.WriteHeader(code)
}

// Write delegates to the underlying writer, triggering an implicit 200 OK if
// WriteHeader has not been called.
func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.headerWritten {
		rw.headerWritten = true
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Unwrap returns the underlying http.ResponseWriter so that
// http.ResponseController and type assertions work through the wrapper.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// bufferedWriter holds the whole response in memory until flush. Pipeline
// uses it so response hooks can still edit headers after the handler is
// done; Timeout uses it so a handler cut off by the deadline sends nothing.
//
// All methods are guarded by mu; under Timeout the handler writes from its
// own goroutine.
type bufferedWriter struct {
	w           http.ResponseWriter
	mu          sync.Mutex
	header      http.Header
	buf         []byte
	statusCode  int
	wroteHeader bool
}

func newBufferedWriter(w http.ResponseWriter) *bufferedWriter {
	return &bufferedWriter{w: w, header: make(http.Header)}
}

func (bw *bufferedWriter) Header() http.Header {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	return bw.header
}

func (bw *bufferedWriter) Write(b []byte) (int, error) {
	bw.mu.Lock()
	defer bw.mu.Unlock()

	if !bw.wroteHeader {
		bw.statusCode = http.StatusOK
		bw.wroteHeader = true
	}
	bw.buf = append(bw.buf, b...)
	return len(b), nil
}

func (bw *bufferedWriter) WriteHeader(code int) {
	bw.mu.Lock()
	defer bw.mu.Unlock()

	if bw.wroteHeader {
		return
	}
	bw.statusCode = code
	bw.wroteHeader = true
}

// status reports the buffered status, 200 if nothing was written.
func (bw *bufferedWriter) status() int {
	bw.mu.Lock()
	defer bw.mu.Unlock()

	if !bw.wroteHeader {
		return http.StatusOK
	}
	return bw.statusCode
}

// reset discards everything buffered so far, headers included.
func (bw *bufferedWriter) reset() {
	bw.mu.Lock()
	defer bw.mu.Unlock()

	bw.header = make(http.Header)
	bw.buf = nil
	bw.statusCode = 0
	bw.wroteHeader = false
}

// flush copies the buffered response to the underlying writer.
func (bw *bufferedWriter) flush() {
	bw.mu.Lock()
	defer bw.mu.Unlock()

	maps.Copy(bw.w.Header(), bw.header)
	if bw.wroteHeader {
		bw.w.WriteHeader(bw.statusCode)
	}
	if len(bw.buf) > 0 {
		_, _ = bw.w.Write(bw.buf)
	}
}
