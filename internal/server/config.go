package server

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"astrolab/internal/server/ratelimit"
)

// Config holds the HTTP server configuration.
type Config struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`

	// RequestTimeout bounds each request's context.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MaxBodySize caps request bodies in bytes.
	MaxBodySize int64 `yaml:"max_body_size"`

	EnableCORS     bool     `yaml:"enable_cors"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	RateLimit ratelimit.Config `yaml:"rate_limit"`

	// AuthRateLimit is the stricter limit for login and signup.
	AuthRateLimit ratelimit.Config `yaml:"auth_rate_limit"`

	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DefaultConfig returns safe defaults for development.
func DefaultConfig() Config {
	return Config{
		Host:            "localhost",
		Port:            8080,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     60 * time.Second,
		RequestTimeout:  30 * time.Second,
		MaxBodySize:     1 << 20,
		EnableCORS:      true,
		RateLimit:       ratelimit.DefaultConfig(),
		AuthRateLimit:   ratelimit.AuthConfig(),
		ShutdownTimeout: 10 * time.Second,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()
	if c.Host == "" {
		c.Host = defaults.Host
	}
	if c.Port == 0 {
		c.Port = defaults.Port
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = defaults.ReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = defaults.WriteTimeout
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = defaults.IdleTimeout
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = defaults.RequestTimeout
	}
	if c.MaxBodySize == 0 {
		c.MaxBodySize = defaults.MaxBodySize
	}
	if c.RateLimit.Requests == 0 {
		c.RateLimit = defaults.RateLimit
	}
	if c.AuthRateLimit.Requests == 0 {
		c.AuthRateLimit = defaults.AuthRateLimit
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = defaults.ShutdownTimeout
	}
}

// ApplyEnvOverrides applies environment variable overrides.
func (c *Config) ApplyEnvOverrides() {
	if host := os.Getenv("ASTROLAB_HOST"); host != "" {
		c.Host = host
	}
	if port := os.Getenv("ASTROLAB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Port = p
		}
	}
}

// ResolvePaths resolves relative paths. No paths in server config.
func (c *Config) ResolvePaths(_ string) {}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("server: invalid port %d", c.Port)
	}
	return nil
}
