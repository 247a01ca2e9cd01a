package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen11/user-lookup-service/internal/adapters/http/dto"
)

// Hook is a named participant in the request lifecycle. A hook opts into
// phases by also implementing one or more of StartupHook, LaunchHook,
// RequestHook and ResponseHook.
type Hook interface {
	Name() string
}

// StartupHook runs once before the listener is bound. An error aborts startup.
type StartupHook interface {
	OnStartup(ctx context.Context) error
}

// LaunchHook runs once after the listener is bound.
type LaunchHook interface {
	OnLaunch(ctx context.Context)
}

// RequestHook sees every inbound request before routing. It returns the
// request to hand to the next hook, usually r itself or a copy with a
// derived context.
type RequestHook interface {
	OnRequest(r *http.Request) *http.Request
}

// ResponseHook sees every response before it leaves the process. It may
// edit headers; returning an error turns the response into a 500.
type ResponseHook interface {
	OnResponse(r *http.Request, h http.Header) error
}

// Pipeline dispatches lifecycle hooks in registration order. Register all
// hooks before Ignite; the hook list is read-only while serving.
type Pipeline struct {
	hooks  []Hook
	logger *slog.Logger
}

// NewPipeline creates an empty Pipeline. A nil logger discards output.
func NewPipeline(logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{logger: logger}
}

// Register appends hooks. Registration order is execution order in every
// phase.
func (p *Pipeline) Register(hooks ...Hook) {
	p.hooks = append(p.hooks, hooks...)
}

// Ignite runs startup hooks. The first failure stops the sequence.
func (p *Pipeline) Ignite(ctx context.Context) error {
	for _, h := range p.hooks {
		sh, ok := h.(StartupHook)
		if !ok {
			continue
		}
		if err := sh.OnStartup(ctx); err != nil {
			return fmt.Errorf("startup hook %s: %w", h.Name(), err)
		}
		p.logger.DebugContext(ctx, "startup hook completed", slog.String("hook", h.Name()))
	}
	return nil
}

// Liftoff runs launch hooks. Call it once the server is accepting
// connections.
func (p *Pipeline) Liftoff(ctx context.Context) {
	for _, h := range p.hooks {
		if lh, ok := h.(LaunchHook); ok {
			lh.OnLaunch(ctx)
		}
	}
}

// Handler wraps next with the request and response phases. The response is
// buffered so response hooks run on every outcome, including errors written
// by the fallback handlers and panics turned into 500 by Recovery.
func (p *Pipeline) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, h := range p.hooks {
			if rh, ok := h.(RequestHook); ok {
				r = rh.OnRequest(r)
			}
		}

		bw := newBufferedWriter(w)
		next.ServeHTTP(bw, r)

		if err := p.respond(r, bw.Header()); err != nil {
			p.logger.ErrorContext(r.Context(), "response hook failed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", bw.status()),
				slog.Any("error", err),
			)
			bw.reset()
			dto.WriteErrorResponse(bw, r, err)
			// Second pass so the replacement still gets its headers; the
			// failure is already logged.
			_ = p.respond(r, bw.Header())
		}

		bw.flush()
	})
}

// respond runs every response hook, even after a failure, and joins errors.
func (p *Pipeline) respond(r *http.Request, h http.Header) error {
	var errs []error
	for _, hook := range p.hooks {
		rh, ok := hook.(ResponseHook)
		if !ok {
			continue
		}
		if err := rh.OnResponse(r, h); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", hook.Name(), err))
		}
	}
	return errors.Join(errs...)
}
