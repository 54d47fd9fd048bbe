package binding

import "time"

// Metrics records what the bindings do.
type Metrics interface {
	// IncOperation counts a call into a Firebase module; result is "success" or "failure".
	IncOperation(module, operation, result string)
	ObserveOperationDuration(module, operation string, duration time.Duration)

	IncCacheHits(scope string)
	IncCacheMisses(scope string)

	// IncAnalyticsEvents counts delivered analytics events per target. kind is
	// "page_view" or "custom", never the caller's event name; result is
	// "success" or "failure".
	IncAnalyticsEvents(kind, result string)

	ObserveHTTPRequest(method, route string, status int, duration time.Duration)
}

// MetricsConfig represents metrics configuration
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" default:"true"`
	Path      string `yaml:"path" default:"/metrics"`
	Namespace string `yaml:"namespace" default:"fbgateway"`
}

// NopMetrics discards every observation.
type NopMetrics struct{}

func (NopMetrics) IncOperation(string, string, string)                    {}
func (NopMetrics) ObserveOperationDuration(string, string, time.Duration) {}
func (NopMetrics) IncCacheHits(string)                                    {}
func (NopMetrics) IncCacheMisses(string)                                  {}
func (NopMetrics) IncAnalyticsEvents(string, string)                      {}
func (NopMetrics) ObserveHTTPRequest(string, string, int, time.Duration)  {}
