package services

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "astrolab/internal/config"
	"astrolab/internal/identity"
	"astrolab/internal/server"
	"astrolab/internal/sources"
	"astrolab/internal/storage"
)

func TestManagerInitWiresEverything(t *testing.T) {
	cfg := &appconfig.Config{
		Env:      appconfig.EnvDevelopment,
		Storage:  storage.Config{Dir: t.TempDir()},
		Server:   server.DefaultConfig(),
		Identity: identity.DefaultConfig(),
		Sources:  sources.DefaultConfig(),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := NewManager(cfg, logger)
	require.NoError(t, m.Init(context.Background()))
	defer m.Shutdown(context.Background())

	// The mux serves the public routes without starting a listener.
	mux := m.server.HTTPMux()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "development")

	// Protected routes reject anonymous callers.
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search/history", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
