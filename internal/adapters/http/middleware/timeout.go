package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout returns middleware that enforces a request deadline. If the handler
// does not complete within the given duration, a 504 Gateway Timeout response
// is written. The context passed to the handler carries the deadline so that
// storage calls can respect it.
//
// The handler runs in a separate goroutine and writes into a bufferedWriter
// that only reaches the real writer once the handler has returned, so a
// handler cut off mid-response yields a plain 504 and never a partial body.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			tw := newBufferedWriter(w)
			done := make(chan struct{})
			panicked := make(chan any, 1)

			go func() {
				defer func() {
					if v := recover(); v != nil {
						panicked <- v
					}
				}()
				next.ServeHTTP(tw, r.WithContext(ctx))
				close(done)
			}()

			select {
			case v := <-panicked:
				// Re-raise on the serving goroutine so Recovery sees it.
				panic(v)
			case <-done:
				tw.flush()
			case <-ctx.Done():
				select {
				case <-done:
					// Finished right at the deadline; the response is complete.
					tw.flush()
				default:
					// Whatever the handler buffered so far is dropped, even a
					// status, so a client never sees a truncated 200.
					w.WriteHeader(http.StatusGatewayTimeout)
				}
			}
		})
	}
}
