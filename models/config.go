// Package models defines data structures for configuration, page types and items.
package models

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultHost      = "cir.nii.ac.jp"
	DefaultUserAgent = "cinii-translator/1.0 (+https://github.com/dtnitsch/cinii-translator)"
	DefaultTimeout   = 30 * time.Second
)

// Config holds runtime configuration. Values come from CLI flags, optionally
// seeded from a YAML file passed with --config.
type Config struct {
	Host      string        `yaml:"host"`
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
	Format    string        `yaml:"format"` // yaml | json
	DBPath    string        `yaml:"db_path,omitempty"`
}

// DefaultConfig returns the configuration used when no file or flag overrides it.
func DefaultConfig() *Config {
	return &Config{
		Host:      DefaultHost,
		UserAgent: DefaultUserAgent,
		Timeout:   DefaultTimeout,
		Format:    "yaml",
	}
}

// LoadConfig reads a YAML config file on top of DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if config.Format != "yaml" && config.Format != "json" {
		return nil, fmt.Errorf("unsupported output format: %q", config.Format)
	}
	return config, nil
}
