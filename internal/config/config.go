// Package config defines service configuration structures and loading hooks.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// BackendBaseURL points at the studio-booking backend's REST API.
	BackendBaseURL string `koanf:"backend_base_url"`

	// BackendToken is the bearer token sent on gateway requests.
	BackendToken string `koanf:"backend_token"`

	// GatewayTimeoutMS bounds each backend call.
	GatewayTimeoutMS int `koanf:"gateway_timeout_ms"`

	// FetchWorkerCount sets the number of fetch workers.
	FetchWorkerCount int `koanf:"fetch_worker_count"`

	// FetchQueueSize bounds the in-memory fetch-job queue.
	FetchQueueSize int `koanf:"fetch_queue_size"`

	// CacheSweepIntervalSeconds controls how often aged cache entries are
	// collected.
	CacheSweepIntervalSeconds int `koanf:"cache_sweep_interval_seconds"`

	// CacheMaxAgeSeconds is the age past which untouched entries are
	// evicted.
	CacheMaxAgeSeconds int `koanf:"cache_max_age_seconds"`

	// DrilldownPageSize sets the items per drilldown page.
	DrilldownPageSize int `koanf:"drilldown_page_size"`

	// StageFreshnessSeconds overrides a stage's freshness window, keyed by
	// stage name (filters, audit, audit_details, ranking,
	// location_breakdown). Unlisted stages keep their defaults.
	StageFreshnessSeconds map[string]int `koanf:"stage_freshness_seconds"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                  "info",
		Addr:                      ":9080",
		BackendBaseURL:            "http://localhost:8000",
		GatewayTimeoutMS:          10_000,
		FetchWorkerCount:          4,
		FetchQueueSize:            1024,
		CacheSweepIntervalSeconds: 60,
		CacheMaxAgeSeconds:        900,
		DrilldownPageSize:         5,
	}
}
