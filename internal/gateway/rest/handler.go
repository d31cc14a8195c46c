// Package rest exposes the HTTP API: authentication, search history, and
// image source search.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/schema"

	"astrolab/internal/history"
	"astrolab/internal/identity"
	"astrolab/internal/server/ratelimit"
	"astrolab/internal/sources"
	"astrolab/pkg/model"
)

// Default body size limit and request timeouts.
const (
	DefaultMaxBodySize = 1 << 20 // 1MB

	DefaultRequestTimeout  = 30 * time.Second
	UpstreamRequestTimeout = 60 * time.Second // sources proxy calls out to NASA
)

// Error codes
const (
	ErrCodeBadRequest     = "BAD_REQUEST"
	ErrCodeUnauthorized   = "UNAUTHORIZED"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeConflict       = "CONFLICT"
	ErrCodeUpstreamError = "UPSTREAM_ERROR"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// APIError is the structured error envelope.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Handler struct {
	auth        *identity.Service
	history     *history.Service
	sources     *sources.Service
	authLimiter ratelimit.Limiter
	environment string

	queryDecoder *schema.Decoder
}

func NewHandler(auth *identity.Service, hist *history.Service, srcs *sources.Service, environment string) *Handler {
	if auth == nil {
		panic("identity service cannot be nil")
	}

	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	return &Handler{
		auth:         auth,
		history:      hist,
		sources:      srcs,
		environment:  environment,
		queryDecoder: decoder,
	}
}

// SetAuthRateLimiter installs the stricter limiter for signup and login.
func (h *Handler) SetAuthRateLimiter(limiter ratelimit.Limiter) {
	h.authLimiter = limiter
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Auth operations. Request ID and panic recovery are handled by the
	// server middleware chain.
	mux.HandleFunc("POST /api/signup", withTimeout(maxBodySize(h.authLimited(h.handleSignUp), DefaultMaxBodySize), DefaultRequestTimeout))
	mux.HandleFunc("POST /api/login", withTimeout(maxBodySize(h.authLimited(h.handleLogin), DefaultMaxBodySize), DefaultRequestTimeout))
	mux.HandleFunc("POST /api/auth/validate", withTimeout(maxBodySize(h.handleValidate, DefaultMaxBodySize), DefaultRequestTimeout))
	mux.HandleFunc("GET /api/auth/me", withTimeout(h.protected(h.handleMe), DefaultRequestTimeout))
	mux.HandleFunc("PUT /api/auth/me", withTimeout(maxBodySize(h.protected(h.handleUpdateMe), DefaultMaxBodySize), DefaultRequestTimeout))

	// Search history.
	mux.HandleFunc("GET /api/search/history", withTimeout(h.protected(h.handleListHistory), DefaultRequestTimeout))
	mux.HandleFunc("DELETE /api/search/history", withTimeout(h.protected(h.handleDeleteHistory), DefaultRequestTimeout))
	mux.HandleFunc("DELETE /api/search/{id}", withTimeout(h.protected(h.handleDeleteSearch), DefaultRequestTimeout))
	mux.HandleFunc("GET /api/search/popular", withTimeout(h.handlePopularTerms, DefaultRequestTimeout))
	mux.HandleFunc("GET /api/search/suggestions", withTimeout(h.protected(h.handleSuggestions), DefaultRequestTimeout))

	// Image sources (proxied upstream search, longer timeout).
	mux.HandleFunc("GET /api/sources", withTimeout(h.protected(h.handleSources), UpstreamRequestTimeout))

	// Root banner and health check.
	mux.HandleFunc("GET /{$}", h.handleRoot)
	mux.HandleFunc("GET /health", withTimeout(h.handleHealth, 5*time.Second))
}

// protected gates a handler behind Bearer authentication.
func (h *Handler) protected(handler http.HandlerFunc) http.HandlerFunc {
	unauthorized := func(w http.ResponseWriter, message string) {
		writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		h.auth.Middleware(unauthorized)(handler).ServeHTTP(w, r)
	}
}

// authLimited applies the stricter auth rate limit when one is configured.
func (h *Handler) authLimited(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.authLimiter != nil && !h.authLimiter.Allow(ratelimit.ClientIP(r)) {
			writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many attempts, try again later")
			return
		}
		handler(w, r)
	}
}

// maxBodySize wraps a handler with request body size limiting.
func maxBodySize(next http.HandlerFunc, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		}
		next(w, r)
	}
}

// withTimeout wraps a handler with a context timeout.
func withTimeout(next http.HandlerFunc, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		next(w, r.WithContext(ctx))
	}
}

// userOrError extracts the authenticated user id placed by the middleware.
func (h *Handler) userOrError(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "Authentication required")
		return "", false
	}
	return userID, true
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("failed to encode JSON response", "error", err)
	}
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(APIError{Code: code, Message: message}); err != nil {
		slog.Warn("failed to encode error response", "error", err)
	}
}

// writeInternalError writes an internal error response, downgrading to 499
// when the client already went away.
func writeInternalError(w http.ResponseWriter, err error, message string) {
	if model.IsCanceled(err) {
		w.WriteHeader(499) // client closed request
		return
	}
	slog.Error(message, "error", err)
	writeError(w, http.StatusInternalServerError, ErrCodeInternalError, message)
}

// writeServiceError maps the shared error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "Not found")
	case errors.Is(err, model.ErrUpstream):
		writeError(w, http.StatusBadGateway, ErrCodeUpstreamError, "Upstream service unavailable")
	default:
		writeInternalError(w, err, "Internal error")
	}
}
