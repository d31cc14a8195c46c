package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the configuration for the file-backed document store.
type Config struct {
	// Dir is the directory holding one <collection>.json file per collection.
	Dir string `yaml:"dir"`
}

// DefaultConfig returns safe defaults for development.
func DefaultConfig() Config {
	return Config{Dir: "db"}
}

// ApplyDefaults fills in zero values with defaults.
func (c *Config) ApplyDefaults() {
	if c.Dir == "" {
		c.Dir = DefaultConfig().Dir
	}
}

// ApplyEnvOverrides applies environment variable overrides.
func (c *Config) ApplyEnvOverrides() {
	if dir := os.Getenv("ASTROLAB_DB_DIR"); dir != "" {
		c.Dir = dir
	}
}

// ResolvePaths resolves the data directory relative to the given base
// directory when it is not absolute.
func (c *Config) ResolvePaths(dataDir string) {
	if c.Dir != "" && !filepath.IsAbs(c.Dir) {
		c.Dir = filepath.Join(dataDir, c.Dir)
	}
}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("storage: dir cannot be empty")
	}
	return nil
}
