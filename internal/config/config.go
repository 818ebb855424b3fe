// Package config defines service configuration and how it is loaded.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Terminal kinds.
const (
	TerminalBridge = "bridge"
	TerminalFile   = "file"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// Timezone names the IANA zone terminal timestamps and months are read
	// in. Empty or "Local" means the process zone.
	Timezone string `koanf:"timezone"`

	// TerminalKind selects the gateway: "bridge" (HTTP) or "file" (YAML fixture).
	TerminalKind string `koanf:"terminal_kind"`

	// TerminalURL is the base URL of the terminal bridge.
	TerminalURL string `koanf:"terminal_url"`

	// TerminalFixture is the YAML file used by the file gateway.
	TerminalFixture string `koanf:"terminal_fixture"`

	// TerminalUsersTimeout and TerminalEventsTimeout bound one fetch each.
	TerminalUsersTimeout  time.Duration `koanf:"terminal_users_timeout"`
	TerminalEventsTimeout time.Duration `koanf:"terminal_events_timeout"`

	// WorkerCount sets the number of refresh workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds pending refresh jobs.
	QueueSize int `koanf:"queue_size"`

	// ReportCacheTTL is how long a rendered report is reused.
	ReportCacheTTL time.Duration `koanf:"report_cache_ttl"`

	// RefreshRatePerMinute and RefreshBurst limit refresh calls per client.
	RefreshRatePerMinute int `koanf:"refresh_rate_per_minute"`
	RefreshBurst         int `koanf:"refresh_burst"`

	// CORSOrigins lists allowed browser origins. Empty disables CORS headers.
	CORSOrigins []string `koanf:"cors_origins"`

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// MetricsEnabled turns collection off without removing /healthz.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsSubsystem is the metric name segment after "punchclock_".
	MetricsSubsystem string `koanf:"metrics_subsystem"`

	// MetricsLatencyBuckets overrides the latency histogram buckets (ms).
	// Empty keeps the Prometheus defaults.
	MetricsLatencyBuckets []float64 `koanf:"metrics_latency_buckets"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":8000",
		Timezone:              "Local",
		TerminalKind:          TerminalBridge,
		TerminalURL:           "http://127.0.0.1:4370",
		TerminalUsersTimeout:  50 * time.Second,
		TerminalEventsTimeout: 900 * time.Second,
		WorkerCount:           2,
		QueueSize:             16,
		ReportCacheTTL:        5 * time.Minute,
		RefreshRatePerMinute:  6,
		RefreshBurst:          3,
		ShutdownTimeout:       10 * time.Second,
		MetricsEnabled:        true,
		MetricsSubsystem:      "attendance",
	}
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	switch c.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %w", ErrInvalidConfig, c.Timezone, err)
	}
	return loc, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	switch c.TerminalKind {
	case TerminalBridge:
		u, err := url.Parse(c.TerminalURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: terminal_url %q", ErrInvalidConfig, c.TerminalURL)
		}
	case TerminalFile:
		if c.TerminalFixture == "" {
			return fmt.Errorf("%w: terminal_fixture required for file terminal", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: terminal_kind %q", ErrInvalidConfig, c.TerminalKind)
	}
	if c.TerminalUsersTimeout <= 0 || c.TerminalEventsTimeout <= 0 {
		return fmt.Errorf("%w: terminal timeouts must be positive", ErrInvalidConfig)
	}
	for i := 1; i < len(c.MetricsLatencyBuckets); i++ {
		if c.MetricsLatencyBuckets[i] <= c.MetricsLatencyBuckets[i-1] {
			return fmt.Errorf("%w: metrics_latency_buckets must be increasing", ErrInvalidConfig)
		}
	}
	if c.WorkerCount < 1 || c.QueueSize < 1 {
		return fmt.Errorf("%w: worker_count and queue_size must be positive", ErrInvalidConfig)
	}
	if c.RefreshRatePerMinute < 1 || c.RefreshBurst < 1 {
		return fmt.Errorf("%w: refresh rate and burst must be positive", ErrInvalidConfig)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}
