package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astrolab/internal/history"
	"astrolab/internal/identity"
	"astrolab/internal/sources"
	"astrolab/internal/storage"
)

const upstreamPayload = `{
  "collection": {
    "items": [
      {
        "data": [{
          "nasa_id": "PIA12345",
          "title": "Snow White Trench on Mars",
          "media_type": "image",
          "description": "The trench informally called Snow White.",
          "keywords": ["Mars"],
          "credit": "NASA/JPL"
        }],
        "links": [
          {"href": "https://images-assets.nasa.gov/thumb.jpg", "rel": "preview", "render": "image"}
        ]
      }
    ]
  }
}`

type fixture struct {
	mux  *http.ServeMux
	auth *identity.Service
	hist *history.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := storage.NewFileStore(storage.Config{Dir: t.TempDir()})
	require.NoError(t, err)

	auth, err := identity.NewService(ctx, identity.DefaultConfig(), store, logger)
	require.NoError(t, err)

	hist, err := history.NewService(ctx, store)
	require.NoError(t, err)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, upstreamPayload)
	}))
	t.Cleanup(upstream.Close)

	srcCfg := sources.DefaultConfig()
	srcCfg.BaseURL = upstream.URL
	srcCfg.Timeout = 2 * time.Second
	srcs := sources.NewService(srcCfg, sources.NewClient(srcCfg), hist, logger)

	handler := NewHandler(auth, hist, srcs, "development")
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	return &fixture{mux: mux, auth: auth, hist: hist}
}

func (f *fixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) signup(t *testing.T, email string) (userID, token string) {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/signup", "", map[string]string{
		"email": email, "password": "s3curepw", "first_name": "Test",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.User.ID, resp.Token
}

func TestRootAndHealth(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
	assert.Contains(t, rec.Body.String(), "development")
}

func TestSignupAndLoginFlow(t *testing.T) {
	f := newFixture(t)

	_, token := f.signup(t, "ada@example.com")
	require.NotEmpty(t, token)

	// Duplicate signup conflicts.
	rec := f.do(t, http.MethodPost, "/api/signup", "", map[string]string{
		"email": "ada@example.com", "password": "s3curepw",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Login succeeds, wrong password rejected with the same message shape.
	rec = f.do(t, http.MethodPost, "/api/login", "", map[string]string{
		"email": "ada@example.com", "password": "s3curepw",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/login", "", map[string]string{
		"email": "ada@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Malformed body.
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader("{"))
	rec = httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidateAndMe(t *testing.T) {
	f := newFixture(t)
	userID, token := f.signup(t, "ada@example.com")

	rec := f.do(t, http.MethodPost, "/api/auth/validate", "", map[string]string{"token": token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), userID)

	rec = f.do(t, http.MethodPost, "/api/auth/validate", "", map[string]string{"token": "bogus"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ada@example.com")

	rec = f.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	_, token := f.signup(t, "ada@example.com")

	rec := f.do(t, http.MethodPut, "/api/auth/me", token, map[string]string{
		"first_name": "Augusta",
		"email":      "hijack@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Augusta")
	assert.Contains(t, rec.Body.String(), "ada@example.com")
	assert.NotContains(t, rec.Body.String(), "hijack@example.com")
}

func TestSourcesRecordsHistory(t *testing.T) {
	f := newFixture(t)
	userID, token := f.signup(t, "ada@example.com")

	rec := f.do(t, http.MethodGet, "/api/sources?q=mars+trench&limit=5", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var results []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "PIA12345", results[0]["id"])
	assert.Equal(t, true, results[0]["search"])

	entries, err := f.hist.List(context.Background(), userID, 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "mars trench", entries[0].SearchTerm)

	// Unauthenticated requests never reach the upstream.
	rec = f.do(t, http.MethodGet, "/api/sources?q=mars", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHistoryEndpoints(t *testing.T) {
	f := newFixture(t)
	userID, token := f.signup(t, "ada@example.com")

	ctx := context.Background()
	for _, term := range []string{"mars", "venus", "earth"} {
		_, err := f.hist.Record(ctx, userID, term)
		require.NoError(t, err)
	}

	rec := f.do(t, http.MethodGet, "/api/search/history?offset=0&limit=2", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listResp struct {
		Data  []history.Entry `json:"data"`
		Total int             `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	assert.Equal(t, 2, listResp.Total)
	require.Len(t, listResp.Data, 2)
	assert.Equal(t, "earth", listResp.Data[0].SearchTerm)

	// Suggestions and popular terms.
	rec = f.do(t, http.MethodGet, "/api/search/suggestions?limit=2", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "earth")

	rec = f.do(t, http.MethodGet, "/api/search/popular", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "mars")

	// Delete one entry, then everything.
	entries, err := f.hist.List(ctx, userID, 0, 0)
	require.NoError(t, err)

	rec = f.do(t, http.MethodDelete, "/api/search/"+entries[0].ID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/search/no-such-id", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/search/history", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Deleted 2 search records")

	remaining, err := f.hist.List(ctx, userID, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestHistoryRequiresAuth(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/api/search/history", "/api/search/suggestions"} {
		rec := f.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
	rec := f.do(t, http.MethodDelete, "/api/search/history", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDeleteOtherUsersEntry(t *testing.T) {
	f := newFixture(t)
	ownerID, _ := f.signup(t, "owner@example.com")
	_, intruderToken := f.signup(t, "intruder@example.com")

	entry, err := f.hist.Record(context.Background(), ownerID, "mars")
	require.NoError(t, err)

	// Foreign entries look exactly like missing ones.
	rec := f.do(t, http.MethodDelete, "/api/search/"+entry.ID, intruderToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	entries, err := f.hist.List(context.Background(), ownerID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
