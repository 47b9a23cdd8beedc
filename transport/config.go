package transport

import (
	"time"

	"github.com/kbukum/synchttp/resilience"
	"github.com/kbukum/synchttp/validation"
)

const (
	defaultName      = "http"
	defaultTimeout   = 30 * time.Second
	defaultWorkers   = 16
	defaultQueueWait = 30 * time.Second
)

// Config configures the HTTP transport.
type Config struct {
	// Name identifies the transport in logs and pool errors. Defaults to "http".
	Name string `yaml:"name" mapstructure:"name"`

	// BaseURL resolves relative call URLs. Empty means calls must be absolute.
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,http_url"`

	// Timeout bounds each send attempt. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	// Headers are default headers applied to all calls.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// Workers is the number of calls executing at once. Defaults to 16.
	Workers int `yaml:"workers" mapstructure:"workers" validate:"gte=0"`

	// QueueWait is how long a started call waits for a free worker before
	// failing. Defaults to 30s.
	QueueWait time.Duration `yaml:"queue_wait" mapstructure:"queue_wait" validate:"gte=0"`

	// HTTP2 enables HTTP/2 with connection health checks. When false the
	// transport speaks HTTP/1.1 only.
	HTTP2 bool `yaml:"http2" mapstructure:"http2"`

	// Tracing wraps the round tripper with OpenTelemetry instrumentation.
	Tracing bool `yaml:"tracing" mapstructure:"tracing"`

	// TLS configures client TLS. Nil uses system defaults.
	TLS *TLSConfig `yaml:"tls" mapstructure:"tls"`

	// Backoff controls the delay between retried attempts.
	Backoff resilience.BackoffConfig `yaml:"backoff" mapstructure:"backoff"`

	// CircuitBreaker trips after consecutive failures. Nil disables it.
	CircuitBreaker *resilience.CircuitBreakerConfig `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`

	// RateLimiter paces send attempts. Nil disables it.
	RateLimiter *resilience.RateLimiterConfig `yaml:"rate_limiter" mapstructure:"rate_limiter"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = defaultName
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
	if c.QueueWait <= 0 {
		c.QueueWait = defaultQueueWait
	}
	c.Backoff.ApplyDefaults()
	if c.CircuitBreaker != nil && c.CircuitBreaker.Name == "" {
		c.CircuitBreaker.Name = c.Name
	}
	if c.RateLimiter != nil && c.RateLimiter.Name == "" {
		c.RateLimiter.Name = c.Name
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}
	return validation.New().
		Merge("tls", c.TLS.Validate()).
		Err()
}
