package identity

import (
	"fmt"
	"os"
	"time"
)

// Config holds authentication configuration.
type Config struct {
	// Secret signs and verifies JWTs (HS256). Override with
	// ASTROLAB_JWT_SECRET in any real deployment.
	Secret string `yaml:"secret"`

	// TokenTTL is the access token lifetime.
	TokenTTL time.Duration `yaml:"token_ttl"`

	// MinPasswordLength is enforced at signup.
	MinPasswordLength int `yaml:"min_password_length"`
}

// DefaultConfig returns safe defaults for development.
func DefaultConfig() Config {
	return Config{
		Secret:            "astrolab-dev-secret-change-in-production",
		TokenTTL:          24 * time.Hour,
		MinPasswordLength: 6,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()
	if c.Secret == "" {
		c.Secret = defaults.Secret
	}
	if c.TokenTTL == 0 {
		c.TokenTTL = defaults.TokenTTL
	}
	if c.MinPasswordLength == 0 {
		c.MinPasswordLength = defaults.MinPasswordLength
	}
}

// ApplyEnvOverrides applies environment variable overrides.
func (c *Config) ApplyEnvOverrides() {
	if secret := os.Getenv("ASTROLAB_JWT_SECRET"); secret != "" {
		c.Secret = secret
	}
}

// ResolvePaths resolves relative paths. No paths in identity config.
func (c *Config) ResolvePaths(_ string) {}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	if c.Secret == "" {
		return fmt.Errorf("identity: secret cannot be empty")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("identity: token_ttl must be positive")
	}
	return nil
}
