// Package ratelimit provides in-memory request rate limiting keyed by
// client IP.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"time"
)

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(key string) bool
	Reset(key string)
}

// Stoppable extends Limiter with a Stop method for cleanup goroutines.
type Stoppable interface {
	Limiter
	Stop()
}

// Config holds rate limiting configuration.
type Config struct {
	// Enabled controls whether rate limiting is active.
	Enabled bool `yaml:"enabled"`

	// Requests is the bucket capacity per window.
	Requests int `yaml:"requests"`

	// Window is the refill period.
	Window time.Duration `yaml:"window"`
}

// DefaultConfig returns the default rate limiting configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:  true,
		Requests: 100,
		Window:   time.Minute,
	}
}

// AuthConfig returns the stricter limit applied to login and signup.
func AuthConfig() Config {
	return Config{
		Enabled:  true,
		Requests: 5,
		Window:   time.Minute,
	}
}

// ClientIP extracts the client address from the request, preferring proxy
// headers over the socket address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
