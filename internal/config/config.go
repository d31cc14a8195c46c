// Package config assembles the application configuration from defaults,
// YAML files, and environment overrides.
package config

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"astrolab/internal/identity"
	"astrolab/internal/logging"
	"astrolab/internal/server"
	"astrolab/internal/sources"
	"astrolab/internal/storage"
)

// Env is the deployment environment.
type Env string

const (
	EnvDevelopment Env = "development"
	EnvProduction  Env = "production"
)

// Config holds the application configuration.
type Config struct {
	Env Env `yaml:"env"`

	Server   server.Config   `yaml:"server"`
	Logging  logging.Config  `yaml:"logging"`
	Storage  storage.Config  `yaml:"storage"`
	Identity identity.Config `yaml:"identity"`
	Sources  sources.Config  `yaml:"sources"`
}

// ServiceConfig is the lifecycle every component config implements.
type ServiceConfig interface {
	// ApplyDefaults fills zero values with sensible defaults.
	ApplyDefaults()

	// ApplyEnvOverrides applies environment variable overrides.
	ApplyEnvOverrides()

	// ResolvePaths resolves relative paths against the given base directory.
	ResolvePaths(base string)

	// Validate returns an error if the configuration is invalid.
	Validate() error
}

// LoadConfig loads configuration in order: defaults, config.yml,
// config.local.yml, environment overrides, path resolution, validation.
func LoadConfig() *Config {
	cfg := &Config{
		Env:      EnvDevelopment,
		Server:   server.DefaultConfig(),
		Logging:  logging.DefaultConfig(),
		Storage:  storage.DefaultConfig(),
		Identity: identity.DefaultConfig(),
		Sources:  sources.DefaultConfig(),
	}

	loadFile("config/config.yml", cfg)
	loadFile("config/config.local.yml", cfg)

	if env := os.Getenv("ASTROLAB_ENV"); env != "" {
		cfg.Env = Env(env)
	}

	if err := cfg.apply("."); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	return cfg
}

func (c *Config) apply(base string) error {
	switch c.Env {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("config: unknown env %q", c.Env)
	}
	return ApplyServiceConfigs(base,
		&c.Server,
		&c.Logging,
		&c.Storage,
		&c.Identity,
		&c.Sources,
	)
}

// ApplyServiceConfigs runs the configuration lifecycle over the given
// configs in order.
func ApplyServiceConfigs(base string, configs ...ServiceConfig) error {
	for _, cfg := range configs {
		cfg.ApplyDefaults()
		cfg.ApplyEnvOverrides()
		cfg.ResolvePaths(base)
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func loadFile(filename string, cfg *Config) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		log.Printf("Warning: error reading %s: %v", filename, err)
		return
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		log.Printf("Warning: error parsing %s: %v", filename, err)
	}
}
