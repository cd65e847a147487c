// Package config provides configuration loading and validation for mirrorx-backend.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a YAML file with environment variable expansion.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	data, err := os.ReadFile(absPath) // #nosec G304 -- Path sanitized with filepath.Clean and filepath.Abs
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables so API keys never live in the file
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// applyDefaults sets default values for optional fields.
func applyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.HTTP.Addr == "" {
		cfg.Server.HTTP.Addr = ":8080"
	}
	if cfg.Server.WebSocket.Enabled && cfg.Server.WebSocket.Addr == "" {
		cfg.Server.WebSocket.Addr = ":8081"
	}

	// Cache defaults
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.DefaultTTL.ToDuration() == 0 {
		cfg.Cache.DefaultTTL = Duration(10 * time.Minute)
	}

	// Schedule defaults
	for i := range cfg.Schedules {
		sched := &cfg.Schedules[i]
		if sched.Interval.ToDuration() == 0 {
			sched.Interval = Duration(10 * time.Minute)
		}
		if sched.AdapterTimeout.ToDuration() == 0 {
			sched.AdapterTimeout = Duration(10 * time.Second)
		}
		if sched.CycleDeadline.ToDuration() == 0 {
			sched.CycleDeadline = Duration(30 * time.Second)
		}
		if sched.MaxConcurrent == 0 {
			sched.MaxConcurrent = 8
		}
	}

	// Metrics defaults
	if cfg.Metrics.Enabled && cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9091"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// TTLFor returns the cache TTL for a dataset, falling back to the default.
func (c *CacheConfig) TTLFor(dataset string) time.Duration {
	if ttl, ok := c.TTLs[dataset]; ok && ttl.ToDuration() > 0 {
		return ttl.ToDuration()
	}
	return c.DefaultTTL.ToDuration()
}

// Datasets returns the set of dataset keys covered by any schedule,
// in first-seen order.
func (c *Config) Datasets() []string {
	seen := make(map[string]bool)
	var keys []string
	for _, sched := range c.Schedules {
		for _, ds := range sched.Datasets {
			if !seen[ds] {
				seen[ds] = true
				keys = append(keys, ds)
			}
		}
	}
	return keys
}

// GetString retrieves a string value from the adapter configuration.
func (ac *AdapterConfig) GetString(key, defaultValue string) string {
	if val, ok := ac.Config[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return defaultValue
}

// GetStringSlice retrieves a string slice from adapter config.
func (ac *AdapterConfig) GetStringSlice(key string) []string {
	if val, ok := ac.Config[key]; ok {
		if slice, ok := val.([]interface{}); ok {
			result := make([]string, 0, len(slice))
			for _, item := range slice {
				if str, ok := item.(string); ok {
					result = append(result, str)
				}
			}
			return result
		}
	}
	return nil
}

// GetInt retrieves an integer from adapter config.
func (ac *AdapterConfig) GetInt(key string, defaultValue int) int {
	if val, ok := ac.Config[key]; ok {
		if i, ok := val.(int); ok {
			return i
		}
	}
	return defaultValue
}

// GetFloat retrieves a float from adapter config.
func (ac *AdapterConfig) GetFloat(key string, defaultValue float64) float64 {
	if val, ok := ac.Config[key]; ok {
		switch v := val.(type) {
		case float64:
			return v
		case int:
			return float64(v)
		}
	}
	return defaultValue
}

// GetBool retrieves a boolean from adapter config.
func (ac *AdapterConfig) GetBool(key string, defaultValue bool) bool {
	if val, ok := ac.Config[key]; ok {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return defaultValue
}
