package binding

import (
	"strings"
	"time"
)

// Config represents the gateway configuration. Firebase project options are
// not part of it; they are read through a ConfigLoader under "firebase.*".
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Cache     CacheConfig     `yaml:"cache"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Analytics AnalyticsConfig `yaml:"analytics"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Port            string        `yaml:"port" default:"8080"`
	Host            string        `yaml:"host" default:"0.0.0.0"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" default:"120s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"30s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" default:"1048576"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" default:"1048576"`
}

// CacheConfig represents the token-verification cache configuration
type CacheConfig struct {
	Type            CacheType     `yaml:"type" default:"memory"`
	RedisURL        string        `yaml:"redis_url"`
	RedisPassword   string        `yaml:"redis_password"`
	RedisDB         int           `yaml:"redis_db" default:"0"`
	MaxKeys         int           `yaml:"max_keys" default:"1000"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" default:"10m"`
	DefaultTTL      time.Duration `yaml:"default_ttl" default:"1h"`
}

// AnalyticsConfig configures delivery of analytics events.
// Without an API secret events are only logged.
type AnalyticsConfig struct {
	APISecret                string        `yaml:"api_secret"`
	Endpoint                 string        `yaml:"endpoint" default:"https://www.google-analytics.com/mp/collect"`
	ClientID                 string        `yaml:"client_id"`
	AdditionalMeasurementIDs []string      `yaml:"additional_measurement_ids"`
	Timeout                  time.Duration `yaml:"timeout" default:"5s"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return ErrConfigurationError
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return ErrConfigurationError
	}

	if c.Analytics.APISecret != "" && c.Analytics.Endpoint == "" {
		return ErrConfigurationError
	}

	return nil
}
