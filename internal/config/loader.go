// Package config loads the gateway configuration from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"firebasebindings/internal/binding"

	"gopkg.in/yaml.v3"
)

// DefaultEnvPrefix prefixes every environment override.
const DefaultEnvPrefix = "FBGATEWAY"

// Loader handles configuration loading from YAML files and environment variables
type Loader struct {
	configPath string
	envPrefix  string
	raw        map[string]any
}

// NewLoader creates a new configuration loader. An empty prefix means DefaultEnvPrefix.
func NewLoader(configPath, envPrefix string) *Loader {
	if envPrefix == "" {
		envPrefix = DefaultEnvPrefix
	}
	return &Loader{
		configPath: configPath,
		envPrefix:  envPrefix,
		raw:        make(map[string]any),
	}
}

// Load reads the YAML file (if any), applies defaults and environment
// overrides, then validates the result.
func (l *Loader) Load() (*binding.Config, error) {
	config := &binding.Config{}

	if l.configPath != "" {
		if err := l.loadFromYAML(config); err != nil {
			return nil, fmt.Errorf("failed to load YAML config: %w", err)
		}
	}

	l.applyDefaults(config)
	l.applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Raw returns the YAML document as a generic map, for dotted-key lookups of
// sections that are not part of binding.Config (such as "firebase").
func (l *Loader) Raw() map[string]any {
	return l.raw
}

// ConfigLoader returns a dotted-key loader over the same file and prefix.
func (l *Loader) ConfigLoader() *EnvConfigLoader {
	return NewEnvConfigLoader(l.envPrefix, l.raw)
}

func (l *Loader) loadFromYAML(config *binding.Config) error {
	data, err := os.ReadFile(l.configPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}

	raw := make(map[string]any)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}
	l.raw = raw

	return nil
}

func (l *Loader) applyDefaults(config *binding.Config) {
	if config.Server.Port == "" {
		config.Server.Port = "8080"
	}
	if config.Server.Host == "" {
		config.Server.Host = "0.0.0.0"
	}
	if config.Server.ReadTimeout == 0 {
		config.Server.ReadTimeout = 10 * time.Second
	}
	if config.Server.WriteTimeout == 0 {
		config.Server.WriteTimeout = 10 * time.Second
	}
	if config.Server.IdleTimeout == 0 {
		config.Server.IdleTimeout = 120 * time.Second
	}
	if config.Server.ShutdownTimeout == 0 {
		config.Server.ShutdownTimeout = 30 * time.Second
	}
	if config.Server.MaxHeaderBytes == 0 {
		config.Server.MaxHeaderBytes = 1 << 20
	}
	if config.Server.MaxBodyBytes == 0 {
		config.Server.MaxBodyBytes = 1 << 20
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if config.Logging.Format == "" {
		config.Logging.Format = "json"
	}

	// A bool cannot carry "unset", so look at the raw document.
	if !l.hasKey("metrics", "enabled") {
		config.Metrics.Enabled = true
	}
	if config.Metrics.Path == "" {
		config.Metrics.Path = "/metrics"
	}
	if config.Metrics.Namespace == "" {
		config.Metrics.Namespace = "fbgateway"
	}

	if config.Cache.MaxKeys == 0 {
		config.Cache.MaxKeys = 1000
	}
	if config.Cache.CleanupInterval == 0 {
		config.Cache.CleanupInterval = 10 * time.Minute
	}
	if config.Cache.DefaultTTL == 0 {
		config.Cache.DefaultTTL = time.Hour
	}

	if config.Analytics.Endpoint == "" {
		config.Analytics.Endpoint = "https://www.google-analytics.com/mp/collect"
	}
	if config.Analytics.Timeout == 0 {
		config.Analytics.Timeout = 5 * time.Second
	}
}

func (l *Loader) applyEnvOverrides(config *binding.Config) {
	if port := l.env("SERVER_PORT"); port != "" {
		config.Server.Port = port
	}
	if host := l.env("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if timeout := l.env("SERVER_READ_TIMEOUT"); timeout != "" {
		if duration, err := time.ParseDuration(timeout); err == nil {
			config.Server.ReadTimeout = duration
		}
	}
	if timeout := l.env("SERVER_WRITE_TIMEOUT"); timeout != "" {
		if duration, err := time.ParseDuration(timeout); err == nil {
			config.Server.WriteTimeout = duration
		}
	}
	if size := l.env("SERVER_MAX_BODY_BYTES"); size != "" {
		if n, err := strconv.ParseInt(size, 10, 64); err == nil {
			config.Server.MaxBodyBytes = n
		}
	}

	if level := l.env("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := l.env("LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}

	if enabled := l.env("METRICS_ENABLED"); enabled != "" {
		config.Metrics.Enabled = strings.ToLower(enabled) == "true"
	}

	if cacheType := l.env("CACHE_TYPE"); cacheType != "" {
		config.Cache.Type = binding.ParseCacheType(cacheType)
	}
	if redisURL := l.env("REDIS_URL"); redisURL != "" {
		config.Cache.RedisURL = redisURL
	}
	if redisPassword := l.env("REDIS_PASSWORD"); redisPassword != "" {
		config.Cache.RedisPassword = redisPassword
	}
	if redisDB := l.env("REDIS_DB"); redisDB != "" {
		if db, err := strconv.Atoi(redisDB); err == nil {
			config.Cache.RedisDB = db
		}
	}

	if secret := l.env("ANALYTICS_API_SECRET"); secret != "" {
		config.Analytics.APISecret = secret
	}
	if endpoint := l.env("ANALYTICS_ENDPOINT"); endpoint != "" {
		config.Analytics.Endpoint = endpoint
	}
	if clientID := l.env("ANALYTICS_CLIENT_ID"); clientID != "" {
		config.Analytics.ClientID = clientID
	}
	if ids := l.env("ANALYTICS_MEASUREMENT_IDS"); ids != "" {
		var measurementIDs []string
		for id := range strings.SplitSeq(ids, ",") {
			if id = strings.TrimSpace(id); id != "" {
				measurementIDs = append(measurementIDs, id)
			}
		}
		config.Analytics.AdditionalMeasurementIDs = measurementIDs
	}
}

func (l *Loader) env(name string) string {
	return os.Getenv(l.envPrefix + "_" + name)
}

func (l *Loader) hasKey(path ...string) bool {
	current := l.raw
	for i, part := range path {
		value, ok := current[part]
		if !ok {
			return false
		}
		if i == len(path)-1 {
			return true
		}
		if current, ok = value.(map[string]any); !ok {
			return false
		}
	}
	return false
}
