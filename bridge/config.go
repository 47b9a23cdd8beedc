package bridge

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/kbukum/synchttp/logger"
	"github.com/kbukum/synchttp/transport"
	"github.com/kbukum/synchttp/validation"
)

// Config configures a client and its HTTP transport.
type Config struct {
	// Transport configures the HTTP transport.
	Transport transport.Config `yaml:"transport" mapstructure:"transport"`

	// Timeout bounds each dispatch wait. Zero means unbounded.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	// Logging configures the client logger.
	Logging logger.Config `yaml:"logging" mapstructure:"logging"`

	// Metrics registers dispatch metrics with the default Prometheus registry.
	Metrics bool `yaml:"metrics" mapstructure:"metrics"`

	// Tracing emits a span per dispatch through the global OpenTelemetry
	// provider.
	Tracing bool `yaml:"tracing" mapstructure:"tracing"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	c.Transport.ApplyDefaults()
	c.Logging.ApplyDefaults()
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	return validation.New().
		Custom(c.Timeout >= 0, "timeout", "must not be negative").
		Merge("transport", c.Transport.Validate()).
		Merge("logging", c.Logging.Validate()).
		Err()
}

// NewFromConfig builds an HTTP transport and a client over it. opts are
// applied after the options derived from cfg.
func NewFromConfig(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.New(&cfg.Logging, cfg.Transport.Name)
	t, err := transport.New(cfg.Transport, transport.WithLogger(log))
	if err != nil {
		return nil, err
	}

	base := []Option{WithLogger(log), WithTimeout(cfg.Timeout)}
	if cfg.Metrics {
		reg := prometheus.WrapRegistererWith(prometheus.Labels{"client": cfg.Transport.Name}, prometheus.DefaultRegisterer)
		base = append(base, WithMetrics(NewMetrics(reg)))
	}
	if !cfg.Tracing {
		base = append(base, WithTracer(noop.NewTracerProvider().Tracer(tracerName)))
	}
	return New(t, append(base, opts...)...), nil
}
