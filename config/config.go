// Package config loads and validates the itemstore service configuration.
//
// Configuration is layered: compiled-in defaults, then an optional JSON
// config file, then ITEMSTORE_* environment variables. The environment
// always wins so deployments can override a shared file per instance.
package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/c360/itemstore/errors"
)

// DefaultBucket is the KV bucket used when neither the config file nor
// ITEMSTORE_BUCKET names one.
const DefaultBucket = "items"

// HTTPConfig configures the public API listener
type HTTPConfig struct {
	Addr         string  `json:"addr"`
	MaxBodyBytes int64   `json:"max_body_bytes"`
	RateLimit    float64 `json:"rate_limit"` // requests per second, 0 disables limiting
	RateBurst    int     `json:"rate_burst"`
}

// NATSConfig configures the connection to the NATS server
type NATSConfig struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// StorageConfig configures the record bucket
type StorageConfig struct {
	Bucket      string `json:"bucket"`
	Description string `json:"description"`
	History     uint8  `json:"history"`
}

// MetricsConfig configures the Prometheus listener
type MetricsConfig struct {
	Addr string `json:"addr"`
	Path string `json:"path"`
}

// Config is the complete service configuration
type Config struct {
	HTTP    HTTPConfig    `json:"http"`
	NATS    NATSConfig    `json:"nats"`
	Storage StorageConfig `json:"storage"`
	Metrics MetricsConfig `json:"metrics"`
}

// Default returns the compiled-in configuration
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:         ":8080",
			MaxBodyBytes: 1 << 20, // 1MB
			RateLimit:    0,
			RateBurst:    0,
		},
		NATS: NATSConfig{
			URL:  "nats://localhost:4222",
			Name: "itemstore",
		},
		Storage: StorageConfig{
			Bucket:      DefaultBucket,
			Description: "Item records",
			History:     1,
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
			Path: "/metrics",
		},
	}
}

// Load builds the configuration from defaults, the optional JSON file at
// path (skipped when path is empty), and environment overrides. The result
// is validated before being returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.WrapInvalid(err, "Config", "Load", "read config file")
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.WrapInvalid(err, "Config", "Load", "parse config file")
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overlays ITEMSTORE_* environment variables onto the config
func (c *Config) applyEnv() {
	if v := os.Getenv("ITEMSTORE_HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("ITEMSTORE_MAX_BODY_BYTES"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.HTTP.MaxBodyBytes = parsed
		}
	}
	if v := os.Getenv("ITEMSTORE_NATS_URL"); v != "" {
		c.NATS.URL = v
	}
	if v := os.Getenv("ITEMSTORE_BUCKET"); v != "" {
		c.Storage.Bucket = v
	}
	if v := os.Getenv("ITEMSTORE_METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}
}

// Validate checks the configuration for values the service cannot run with
func (c *Config) Validate() error {
	if c.HTTP.Addr == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate", "http.addr")
	}
	if _, _, err := net.SplitHostPort(c.HTTP.Addr); err != nil {
		return errors.WrapInvalid(fmt.Errorf("http.addr %q: %w", c.HTTP.Addr, err),
			"Config", "Validate", "listen address")
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		return errors.WrapInvalid(fmt.Errorf("http.max_body_bytes must be positive, got %d", c.HTTP.MaxBodyBytes),
			"Config", "Validate", "body limit")
	}
	if c.HTTP.RateLimit < 0 {
		return errors.WrapInvalid(fmt.Errorf("http.rate_limit must not be negative, got %v", c.HTTP.RateLimit),
			"Config", "Validate", "rate limit")
	}
	if c.HTTP.RateLimit > 0 && c.HTTP.RateBurst <= 0 {
		return errors.WrapInvalid(fmt.Errorf("http.rate_burst must be positive when rate_limit is set"),
			"Config", "Validate", "rate limit")
	}
	if c.NATS.URL == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate", "nats.url")
	}
	if c.Storage.Bucket == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate", "storage.bucket")
	}
	if c.Metrics.Addr != "" {
		if _, _, err := net.SplitHostPort(c.Metrics.Addr); err != nil {
			return errors.WrapInvalid(fmt.Errorf("metrics.addr %q: %w", c.Metrics.Addr, err),
				"Config", "Validate", "metrics address")
		}
	}
	return nil
}
