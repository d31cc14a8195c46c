// Package server owns the HTTP listener: the middleware chain every request
// passes through (recovery, request ids, logging, security headers, CORS,
// rate limiting) and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"astrolab/internal/server/ratelimit"
)

// Service is the HTTP network layer.
type Service interface {
	// Start runs the listener. It blocks until a fatal error occurs or the
	// context is canceled.
	Start(ctx context.Context) error

	// Stop drains connections until done or the context expires.
	Stop(ctx context.Context) error

	// HTTPMux returns the mux for route registration. Register before Start.
	HTTPMux() *http.ServeMux

	// AuthRateLimiter is the stricter limiter for login and signup routes.
	AuthRateLimiter() ratelimit.Limiter
}

type serverImpl struct {
	cfg    Config
	logger *slog.Logger

	httpMux    *http.ServeMux
	httpServer *http.Server

	rateLimiter     ratelimit.Stoppable
	authRateLimiter ratelimit.Stoppable

	mu      sync.Mutex
	started bool
}

// New creates a new Service instance.
func New(cfg Config, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "server")

	s := &serverImpl{
		cfg:     cfg,
		logger:  logger,
		httpMux: http.NewServeMux(),
	}

	if cfg.RateLimit.Enabled {
		s.rateLimiter = ratelimit.NewMemoryLimiter(cfg.RateLimit)
	}
	if cfg.AuthRateLimit.Enabled {
		s.authRateLimiter = ratelimit.NewMemoryLimiter(cfg.AuthRateLimit)
	}

	return s
}

func (s *serverImpl) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("server already started")
	}
	s.started = true

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:      s.wrapMiddleware(s.httpMux),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return nil
	}
}

func (s *serverImpl) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.authRateLimiter != nil {
		s.authRateLimiter.Stop()
	}

	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("stopping HTTP server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown error: %w", err)
	}
	return nil
}

func (s *serverImpl) HTTPMux() *http.ServeMux {
	return s.httpMux
}

func (s *serverImpl) AuthRateLimiter() ratelimit.Limiter {
	return s.authRateLimiter
}
