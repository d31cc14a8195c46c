// Package services is the composition root: it wires the document store,
// the domain services, the REST handlers, and the HTTP server together.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"astrolab/internal/config"
	"astrolab/internal/gateway/rest"
	"astrolab/internal/history"
	"astrolab/internal/identity"
	"astrolab/internal/server"
	"astrolab/internal/sources"
	"astrolab/internal/storage"
)

// Manager owns the lifecycle of every service in the process.
type Manager struct {
	cfg    *config.Config
	logger *slog.Logger

	store   storage.Store
	auth    *identity.Service
	history *history.Service
	sources *sources.Service
	server  server.Service
}

// NewManager creates an uninitialized manager. Call Init before Start.
func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{cfg: cfg, logger: logger}
}

// Init builds the dependency graph: store, then the services on top of it,
// then the HTTP surface.
func (m *Manager) Init(ctx context.Context) error {
	store, err := storage.NewFileStore(m.cfg.Storage)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	m.store = store

	m.auth, err = identity.NewService(ctx, m.cfg.Identity, store, m.logger)
	if err != nil {
		return fmt.Errorf("init identity: %w", err)
	}

	m.history, err = history.NewService(ctx, store)
	if err != nil {
		return fmt.Errorf("init history: %w", err)
	}

	client := sources.NewClient(m.cfg.Sources)
	m.sources = sources.NewService(m.cfg.Sources, client, m.history, m.logger)

	m.server = server.New(m.cfg.Server, m.logger)

	handler := rest.NewHandler(m.auth, m.history, m.sources, string(m.cfg.Env))
	if limiter := m.server.AuthRateLimiter(); limiter != nil {
		handler.SetAuthRateLimiter(limiter)
	}
	handler.RegisterRoutes(m.server.HTTPMux())

	return nil
}

// Start runs the HTTP server. It blocks until a fatal error occurs or the
// context is canceled.
func (m *Manager) Start(ctx context.Context) error {
	return m.server.Start(ctx)
}

// Shutdown drains the HTTP server.
func (m *Manager) Shutdown(ctx context.Context) {
	if m.server == nil {
		return
	}
	if err := m.server.Stop(ctx); err != nil {
		m.logger.Error("error stopping server", "error", err)
	}
}
