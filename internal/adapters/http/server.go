package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jsamuelsen11/user-lookup-service/internal/platform/config"
)

const defaultShutdownTimeout = 10 * time.Second

// Server owns the listener for the lookup service and drains in-flight
// requests on Shutdown.
type Server struct {
	srv      *http.Server
	logger   *slog.Logger
	onLaunch func(addr net.Addr)
}

// NewServer creates a new HTTP server from the given config and handler.
func NewServer(cfg config.ServerConfig, handler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		srv: &http.Server{
			Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		logger: logger,
	}
}

// OnLaunch sets a callback run once the listener is bound, before the first
// request is accepted. Call it before Start.
func (s *Server) OnLaunch(fn func(addr net.Addr)) {
	s.onLaunch = fn
}

// Start binds the listener and serves until Shutdown. A clean shutdown
// returns nil.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("http server listen: %w", err)
	}

	s.logger.Info("starting HTTP server", slog.String("addr", ln.Addr().String()))
	if s.onLaunch != nil {
		s.onLaunch(ln.Addr())
	}

	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
// Without a deadline on ctx the wait is capped at defaultShutdownTimeout.
func (s *Server) Shutdown(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultShutdownTimeout)
		defer cancel()
	}

	s.logger.Info("shutting down HTTP server")
	return s.srv.Shutdown(ctx)
}

// Addr is the configured host:port, not the bound one.
func (s *Server) Addr() string {
	return s.srv.Addr
}
