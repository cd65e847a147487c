package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
adapters:
  - type: market
    name: coingecko
    enabled: true
    dataset: crypto-market
schedules:
  - name: market-refresh
    interval: 5m
    datasets:
      - crypto-market
`

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.HTTP.Addr != ":8080" {
		t.Errorf("Expected default HTTP addr :8080, got %s", cfg.Server.HTTP.Addr)
	}
	if cfg.Cache.Backend != "memory" {
		t.Errorf("Expected default backend memory, got %s", cfg.Cache.Backend)
	}
	if cfg.Cache.DefaultTTL.ToDuration() != 10*time.Minute {
		t.Errorf("Expected default TTL 10m, got %v", cfg.Cache.DefaultTTL.ToDuration())
	}

	sched := cfg.Schedules[0]
	if sched.Interval.ToDuration() != 5*time.Minute {
		t.Errorf("Expected configured interval 5m, got %v", sched.Interval.ToDuration())
	}
	if sched.AdapterTimeout.ToDuration() != 10*time.Second {
		t.Errorf("Expected default adapter timeout 10s, got %v", sched.AdapterTimeout.ToDuration())
	}
	if sched.CycleDeadline.ToDuration() != 30*time.Second {
		t.Errorf("Expected default cycle deadline 30s, got %v", sched.CycleDeadline.ToDuration())
	}
	if sched.MaxConcurrent != 8 {
		t.Errorf("Expected default max concurrent 8, got %d", sched.MaxConcurrent)
	}

	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Expected default logging info/json, got %s/%s", cfg.Logging.Level, cfg.Logging.Format)
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("Minimal config with defaults should validate: %v", err)
	}
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_MIRRORX_API_KEY", "secret-key-123")

	cfg, err := Load(writeConfig(t, `
adapters:
  - type: market
    name: coingecko
    enabled: true
    dataset: crypto-market
    config:
      api_key: "${TEST_MIRRORX_API_KEY}"
schedules:
  - name: market-refresh
    datasets:
      - crypto-market
`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := cfg.Adapters[0].GetString("api_key", ""); got != "secret-key-123" {
		t.Errorf("Expected expanded api_key, got %q", got)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/does/not/exist.yaml"); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestValidate_Errors(t *testing.T) {
	base := func() *Config {
		cfg := &Config{
			Adapters: []AdapterConfig{
				{Type: "market", Name: "coingecko", Enabled: true, Dataset: "crypto-market"},
			},
			Schedules: []ScheduleConfig{
				{Name: "s1", Datasets: []string{"crypto-market"}},
			},
			Cache:   CacheConfig{Backend: "memory"},
			Logging: LoggingConfig{Level: "info", Format: "json"},
		}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "no schedules",
			mutate:  func(c *Config) { c.Schedules = nil },
			wantErr: ErrNoSchedulesConfigured,
		},
		{
			name:    "no adapters",
			mutate:  func(c *Config) { c.Adapters = nil },
			wantErr: ErrNoAdaptersConfigured,
		},
		{
			name:    "invalid adapter type",
			mutate:  func(c *Config) { c.Adapters[0].Type = "carrier-pigeon" },
			wantErr: ErrInvalidAdapterType,
		},
		{
			name: "duplicate enabled adapter names",
			mutate: func(c *Config) {
				c.Adapters = append(c.Adapters, AdapterConfig{
					Type: "oracle", Name: "coingecko", Enabled: true, Dataset: "crypto-market",
				})
			},
			wantErr: ErrDuplicateAdapterName,
		},
		{
			name: "dataset without enabled adapters",
			mutate: func(c *Config) {
				c.Schedules[0].Datasets = []string{"token-prices"}
			},
			wantErr: ErrDatasetNoAdapters,
		},
		{
			name: "dataset claimed by two schedules",
			mutate: func(c *Config) {
				c.Schedules = append(c.Schedules, ScheduleConfig{
					Name: "s2", Datasets: []string{"crypto-market"},
				})
			},
			wantErr: ErrScheduleDatasetOverlap,
		},
		{
			name: "cycle deadline below adapter timeout",
			mutate: func(c *Config) {
				c.Schedules[0].AdapterTimeout = Duration(30 * time.Second)
				c.Schedules[0].CycleDeadline = Duration(10 * time.Second)
			},
			wantErr: ErrDeadlineBelowTimeout,
		},
		{
			name:    "redis backend without addr",
			mutate:  func(c *Config) { c.Cache.Backend = "redis" },
			wantErr: ErrRedisAddrRequired,
		},
		{
			name:    "unknown cache backend",
			mutate:  func(c *Config) { c.Cache.Backend = "memcached" },
			wantErr: ErrInvalidCacheBackend,
		},
		{
			name: "TLS without key",
			mutate: func(c *Config) {
				c.Server.HTTP.TLS = TLSConfig{Enabled: true, Cert: "cert.pem"}
			},
			wantErr: ErrTLSConfigIncomplete,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: ErrInvalidLogLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatal("Expected validation error, got none")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestTTLFor(t *testing.T) {
	cfg := CacheConfig{
		DefaultTTL: Duration(10 * time.Minute),
		TTLs: map[string]Duration{
			"token-prices": Duration(5 * time.Minute),
		},
	}

	if got := cfg.TTLFor("token-prices"); got != 5*time.Minute {
		t.Errorf("Expected override 5m, got %v", got)
	}
	if got := cfg.TTLFor("crypto-market"); got != 10*time.Minute {
		t.Errorf("Expected default 10m, got %v", got)
	}
}

func TestDatasets_FirstSeenOrder(t *testing.T) {
	cfg := &Config{
		Schedules: []ScheduleConfig{
			{Name: "a", Datasets: []string{"crypto-market", "token-prices"}},
			{Name: "b", Datasets: []string{"social-metrics", "crypto-market"}},
		},
	}

	got := cfg.Datasets()
	want := []string{"crypto-market", "token-prices", "social-metrics"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d datasets, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
adapters:
  - type: market
    name: coingecko
    enabled: true
    dataset: crypto-market
schedules:
  - name: s1
    interval: 90s
    datasets:
      - crypto-market
`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := cfg.Schedules[0].Interval.ToDuration(); got != 90*time.Second {
		t.Errorf("Expected 90s, got %v", got)
	}
}
