package sources

import (
	"fmt"
	"os"
	"time"
)

// Config holds NASA image library client configuration.
type Config struct {
	// BaseURL is the NASA images API root.
	BaseURL string `yaml:"base_url"`

	// Timeout bounds each upstream request.
	Timeout time.Duration `yaml:"timeout"`

	// PageSize is the default upstream page size when the caller does not
	// cap results.
	PageSize int `yaml:"page_size"`
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:  "https://images-api.nasa.gov",
		Timeout:  10 * time.Second,
		PageSize: 30,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = defaults.BaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = defaults.Timeout
	}
	if c.PageSize == 0 {
		c.PageSize = defaults.PageSize
	}
}

// ApplyEnvOverrides applies environment variable overrides.
func (c *Config) ApplyEnvOverrides() {
	if url := os.Getenv("ASTROLAB_NASA_BASE_URL"); url != "" {
		c.BaseURL = url
	}
}

// ResolvePaths resolves relative paths. No paths in sources config.
func (c *Config) ResolvePaths(_ string) {}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("sources: base_url cannot be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("sources: timeout must be positive")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("sources: page_size must be positive")
	}
	return nil
}
