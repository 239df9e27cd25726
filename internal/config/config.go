// Package config loads and validates the typed configuration for a
// value dictionary instance from a YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StorageConfig controls the on-disk engine.
type StorageConfig struct {
	DataDir    string `yaml:"data_dir"`
	SyncWrites bool   `yaml:"sync_writes"`
	MaxKeySize int    `yaml:"max_key_size"`
}

// CacheConfig sizes the four bounded lookup caches.
type CacheConfig struct {
	ValueSize       int `yaml:"value_size"`
	ValueIDSize     int `yaml:"value_id_size"`
	NamespaceSize   int `yaml:"namespace_size"`
	NamespaceIDSize int `yaml:"namespace_id_size"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics registry.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Config is the complete configuration for a value dictionary instance.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// Load reads and validates configuration from filePath, applying
// defaults to anything left unspecified.
func Load(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("valuedict/config: read %s: %w", filePath, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("valuedict/config: parse %s: %w", filePath, err)
	}

	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("valuedict/config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "./data"
	}
	if cfg.Storage.MaxKeySize == 0 {
		cfg.Storage.MaxKeySize = 512
	}
	if cfg.Cache.ValueSize == 0 {
		cfg.Cache.ValueSize = 512
	}
	if cfg.Cache.ValueIDSize == 0 {
		cfg.Cache.ValueIDSize = 128
	}
	if cfg.Cache.NamespaceSize == 0 {
		cfg.Cache.NamespaceSize = 64
	}
	if cfg.Cache.NamespaceIDSize == 0 {
		cfg.Cache.NamespaceIDSize = 32
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

// Validate checks invariants that setDefaults cannot fix on its own.
func (c *Config) Validate() error {
	if c.Storage.MaxKeySize < 32 {
		return fmt.Errorf("storage.max_key_size must be at least 32 bytes")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q is not one of console, json", c.Logging.Format)
	}
	return nil
}
