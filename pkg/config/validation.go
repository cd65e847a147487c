package config

import (
	"fmt"
	"strings"
)

// Validate checks configuration for errors
func Validate(cfg *Config) error {
	if len(cfg.Schedules) == 0 {
		return ErrNoSchedulesConfigured
	}
	if len(cfg.Adapters) == 0 {
		return ErrNoAdaptersConfigured
	}

	// Enabled adapters per dataset, needed to check schedule coverage.
	// Names must be unique because cycle results are keyed by adapter name.
	adaptersByDataset := make(map[string]int)
	seenNames := make(map[string]bool)
	for i := range cfg.Adapters {
		adapter := &cfg.Adapters[i]
		if err := validateAdapterConfig(adapter); err != nil {
			return fmt.Errorf("adapter %d (%s.%s): %w", i, adapter.Type, adapter.Name, err)
		}
		if adapter.Enabled {
			if seenNames[adapter.Name] {
				return fmt.Errorf("%w: %s", ErrDuplicateAdapterName, adapter.Name)
			}
			seenNames[adapter.Name] = true
			adaptersByDataset[adapter.Dataset]++
		}
	}

	claimed := make(map[string]string) // dataset -> schedule name
	for i := range cfg.Schedules {
		sched := &cfg.Schedules[i]
		if err := validateScheduleConfig(sched, adaptersByDataset); err != nil {
			return fmt.Errorf("schedule %d (%s): %w", i, sched.Name, err)
		}
		for _, ds := range sched.Datasets {
			if other, ok := claimed[ds]; ok {
				return fmt.Errorf("schedule %s: %w: %s (also in %s)", sched.Name, ErrScheduleDatasetOverlap, ds, other)
			}
			claimed[ds] = sched.Name
		}
	}

	if err := validateCacheConfig(&cfg.Cache); err != nil {
		return fmt.Errorf("cache config: %w", err)
	}

	if cfg.Server.HTTP.TLS.Enabled {
		if cfg.Server.HTTP.TLS.Cert == "" || cfg.Server.HTTP.TLS.Key == "" {
			return ErrTLSConfigIncomplete
		}
	}

	if err := validateLoggingConfig(&cfg.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

func validateScheduleConfig(cfg *ScheduleConfig, adaptersByDataset map[string]int) error {
	if cfg.Name == "" {
		return ErrScheduleNameRequired
	}
	if len(cfg.Datasets) == 0 {
		return ErrScheduleNoDatasets
	}
	if cfg.CycleDeadline.ToDuration() < cfg.AdapterTimeout.ToDuration() {
		return ErrDeadlineBelowTimeout
	}
	for _, ds := range cfg.Datasets {
		if adaptersByDataset[ds] == 0 {
			return fmt.Errorf("%w: %s", ErrDatasetNoAdapters, ds)
		}
	}
	return nil
}

func validateAdapterConfig(cfg *AdapterConfig) error {
	validTypes := []string{"market", "oracle", "social"}
	typeValid := false
	for _, t := range validTypes {
		if strings.ToLower(cfg.Type) == t {
			typeValid = true
			break
		}
	}
	if cfg.Type == "" {
		return ErrAdapterTypeRequired
	}
	if !typeValid {
		return fmt.Errorf("%w: %s (must be one of: %s)", ErrInvalidAdapterType, cfg.Type, strings.Join(validTypes, ", "))
	}
	if cfg.Name == "" {
		return ErrAdapterNameRequired
	}
	if cfg.Dataset == "" {
		return ErrAdapterDatasetRequired
	}
	return nil
}

func validateCacheConfig(cfg *CacheConfig) error {
	backend := strings.ToLower(cfg.Backend)
	switch backend {
	case "memory":
	case "redis":
		if cfg.Redis.Addr == "" {
			return ErrRedisAddrRequired
		}
	default:
		return fmt.Errorf("%w: %s (must be 'memory' or 'redis')", ErrInvalidCacheBackend, cfg.Backend)
	}
	return nil
}

func validateLoggingConfig(cfg *LoggingConfig) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	levelValid := false
	for _, l := range validLevels {
		if strings.ToLower(cfg.Level) == l {
			levelValid = true
			break
		}
	}
	if !levelValid {
		return fmt.Errorf("%w: %s (must be one of: %s)", ErrInvalidLogLevel, cfg.Level, strings.Join(validLevels, ", "))
	}

	format := strings.ToLower(cfg.Format)
	if format != "json" && format != "text" {
		return fmt.Errorf("%w: %s (must be 'json' or 'text')", ErrInvalidLogFormat, cfg.Format)
	}

	return nil
}
