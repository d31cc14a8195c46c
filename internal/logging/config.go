package logging

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config holds logging configuration.
type Config struct {
	// Dir is where log files are written.
	Dir string `yaml:"dir"`

	Console ConsoleConfig  `yaml:"console"`
	File    FileConfig     `yaml:"file"`
	Rotate  RotationConfig `yaml:"rotation"`
}

// ConsoleConfig controls the stdout handler.
type ConsoleConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
}

// FileConfig controls the rotating file handlers.
type FileConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
}

// RotationConfig controls log rotation.
type RotationConfig struct {
	MaxSize    int  `yaml:"max_size"` // megabytes
	MaxBackups int  `yaml:"max_backups"`
	MaxAge     int  `yaml:"max_age"` // days
	Compress   bool `yaml:"compress"`
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() Config {
	return Config{
		Dir: "logs",
		Console: ConsoleConfig{
			Enabled: true,
			Level:   "info",
			Format:  "text",
		},
		File: FileConfig{
			Enabled: true,
			Level:   "info",
			Format:  "json",
		},
		Rotate: RotationConfig{
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		},
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()
	if c.Dir == "" {
		c.Dir = defaults.Dir
	}
	if c.Console.Level == "" {
		c.Console.Level = defaults.Console.Level
	}
	if c.Console.Format == "" {
		c.Console.Format = defaults.Console.Format
	}
	if c.File.Level == "" {
		c.File.Level = defaults.File.Level
	}
	if c.File.Format == "" {
		c.File.Format = defaults.File.Format
	}
	if c.Rotate.MaxSize == 0 {
		c.Rotate.MaxSize = defaults.Rotate.MaxSize
	}
	if c.Rotate.MaxBackups == 0 {
		c.Rotate.MaxBackups = defaults.Rotate.MaxBackups
	}
	if c.Rotate.MaxAge == 0 {
		c.Rotate.MaxAge = defaults.Rotate.MaxAge
	}
}

// ApplyEnvOverrides applies environment variable overrides.
func (c *Config) ApplyEnvOverrides() {
	if dir := os.Getenv("ASTROLAB_LOG_DIR"); dir != "" {
		c.Dir = dir
	}
	if level := os.Getenv("ASTROLAB_LOG_LEVEL"); level != "" {
		c.Console.Level = level
		c.File.Level = level
	}
}

// ResolvePaths resolves the log directory relative to the given base.
func (c *Config) ResolvePaths(base string) {
	if c.Dir != "" && !filepath.IsAbs(c.Dir) {
		c.Dir = filepath.Join(base, c.Dir)
	}
}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	if c.File.Enabled && c.Dir == "" {
		return fmt.Errorf("logging: dir cannot be empty when file logging is enabled")
	}
	for _, level := range []string{c.Console.Level, c.File.Level} {
		switch level {
		case "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("logging: invalid level %q", level)
		}
	}
	return nil
}
