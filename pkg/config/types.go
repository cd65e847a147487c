package config

import "time"

// Config is the root configuration structure
type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Cache     CacheConfig      `yaml:"cache"`
	Adapters  []AdapterConfig  `yaml:"adapters"`
	Schedules []ScheduleConfig `yaml:"schedules"`
	Metrics   MetricsConfig    `yaml:"metrics"`
	Logging   LoggingConfig    `yaml:"logging"`
}

// ServerConfig configures the snapshot API component
type ServerConfig struct {
	HTTP      HTTPConfig `yaml:"http"`
	WebSocket WSConfig   `yaml:"websocket"`
}

// HTTPConfig configures the HTTP server
type HTTPConfig struct {
	Addr string    `yaml:"addr"`
	TLS  TLSConfig `yaml:"tls"`
}

// WSConfig configures the WebSocket server
type WSConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// TLSConfig holds TLS certificate configuration
type TLSConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cert    string `yaml:"cert"`
	Key     string `yaml:"key"`
}

// CacheConfig configures the snapshot cache store
type CacheConfig struct {
	Backend    string              `yaml:"backend"` // "memory" or "redis"
	Redis      RedisConfig         `yaml:"redis"`
	DefaultTTL Duration            `yaml:"default_ttl"`
	TTLs       map[string]Duration `yaml:"ttls"` // per-dataset TTL overrides
}

// RedisConfig configures the Redis cache backend
type RedisConfig struct {
	Addr     string   `yaml:"addr"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
	Expiry   Duration `yaml:"expiry"` // operational expiry hint for stored keys, 0 = keep forever
}

// AdapterConfig configures an upstream source adapter
type AdapterConfig struct {
	Type    string                 `yaml:"type"`
	Name    string                 `yaml:"name"`
	Enabled bool                   `yaml:"enabled"`
	Dataset string                 `yaml:"dataset"`
	Config  map[string]interface{} `yaml:"config"`
}

// ScheduleConfig binds a refresh interval to a set of datasets
type ScheduleConfig struct {
	Name           string   `yaml:"name"`
	Interval       Duration `yaml:"interval"`
	Datasets       []string `yaml:"datasets"`
	AdapterTimeout Duration `yaml:"adapter_timeout"`
	CycleDeadline  Duration `yaml:"cycle_deadline"`
	MaxConcurrent  int      `yaml:"max_concurrent"`
}

// MetricsConfig configures Prometheus metrics
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Path    string `yaml:"path"`
}

// LoggingConfig configures logging
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Duration is a wrapper around time.Duration for YAML parsing
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	td, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(td)
	return nil
}

// ToDuration converts Duration to time.Duration
func (d Duration) ToDuration() time.Duration {
	return time.Duration(d)
}
