package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Overlay is the YAML-file portion of the configuration. Every field is
// optional; unset fields leave the environment-derived value alone. The
// same shape is what the watcher reloads at runtime.
type Overlay struct {
	ServerAddress *string  `yaml:"server_address"`
	LogLevel      *string  `yaml:"log_level"`
	Features      Features `yaml:"features"`
	Limits        Limits   `yaml:"limits"`
}

// Features holds the hot-togglable feature flags.
type Features struct {
	Metrics *bool `yaml:"metrics"`
	Tracing *bool `yaml:"tracing"`
	CORS    *bool `yaml:"cors"`
}

// Limits holds the hot-adjustable limits.
type Limits struct {
	RateLimitPerMinute *int `yaml:"rate_limit_per_minute"`
}

// LoadOverlay reads and parses an overlay file.
func LoadOverlay(path string) (*Overlay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var overlay Overlay
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	if err := overlay.Validate(); err != nil {
		return nil, err
	}
	return &overlay, nil
}

// Validate rejects overlay values that would break the service if applied.
func (o *Overlay) Validate() error {
	if o.LogLevel != nil {
		switch *o.LogLevel {
		case "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("log_level must be one of debug, info, warn, error")
		}
	}
	if o.Limits.RateLimitPerMinute != nil && *o.Limits.RateLimitPerMinute <= 0 {
		return fmt.Errorf("rate_limit_per_minute must be positive")
	}
	return nil
}

// Apply copies the overlay's set fields onto cfg.
func (o *Overlay) Apply(cfg *Config) {
	if o.ServerAddress != nil {
		cfg.ServerAddress = *o.ServerAddress
	}
	if o.LogLevel != nil {
		cfg.LogLevel = *o.LogLevel
	}
	if o.Features.Metrics != nil {
		cfg.EnableMetrics = *o.Features.Metrics
	}
	if o.Features.Tracing != nil {
		cfg.EnableTracing = *o.Features.Tracing
	}
	if o.Features.CORS != nil {
		cfg.EnableCORS = *o.Features.CORS
	}
	if o.Limits.RateLimitPerMinute != nil {
		cfg.RateLimitPerMinute = *o.Limits.RateLimitPerMinute
	}
}
