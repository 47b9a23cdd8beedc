package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/http2"

	"github.com/kbukum/synchttp/errors"
	"github.com/kbukum/synchttp/logger"
	"github.com/kbukum/synchttp/resilience"
)

const (
	h2ReadIdleTimeout = 30 * time.Second
	h2PingTimeout     = 15 * time.Second
)

// HTTP is the net/http Transport. Calls run on a bounded worker pool and
// share one pooled connection set.
type HTTP struct {
	client *http.Client
	config Config
	log    *logger.Logger
	pool   *resilience.Pool
	cb     *resilience.CircuitBreaker
	rl     *resilience.RateLimiter
}

var _ Transport = (*HTTP)(nil)

// Option configures an HTTP transport.
type Option func(*options)

type options struct {
	log *logger.Logger
	rt  http.RoundTripper
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithRoundTripper replaces the pooled net/http transport. TLS and HTTP2
// settings are ignored; Tracing still wraps rt.
func WithRoundTripper(rt http.RoundTripper) Option {
	return func(o *options) { o.rt = rt }
}

// New creates an HTTP transport.
func New(cfg Config, opts ...Option) (*HTTP, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{log: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	rt := o.rt
	if rt == nil {
		var err error
		if rt, err = newRoundTripper(&cfg); err != nil {
			return nil, err
		}
	}
	if cfg.Tracing {
		rt = otelhttp.NewTransport(rt,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return "HTTP " + r.Method
			}))
	}

	log := o.log.WithComponent("transport").WithFields(logger.Fields(logger.FieldTransport, cfg.Name))
	t := &HTTP{
		client: &http.Client{Transport: rt, Timeout: cfg.Timeout},
		config: cfg,
		log:    log,
		pool: resilience.NewPool(resilience.PoolConfig{
			Name:    cfg.Name,
			Workers: cfg.Workers,
			MaxWait: cfg.QueueWait,
			OnReject: func(name string, err error) {
				log.Warn("call rejected by worker pool", logger.Fields(logger.FieldError, err.Error()))
			},
		}),
	}

	if cfg.CircuitBreaker != nil {
		cbCfg := *cfg.CircuitBreaker
		cbCfg.OnStateChange = func(name string, from, to resilience.State) {
			log.Warn("circuit breaker state changed", logger.Fields("from", from.String(), "to", to.String()))
		}
		cbCfg.IsFailure = errors.IsNetwork
		t.cb = resilience.NewCircuitBreaker(cbCfg)
	}
	if cfg.RateLimiter != nil {
		t.rl = resilience.NewRateLimiter(*cfg.RateLimiter)
	}
	return t, nil
}

func newRoundTripper(cfg *Config) (http.RoundTripper, error) {
	base := cleanhttp.DefaultPooledTransport()
	base.MaxConnsPerHost = cfg.Workers

	tlsCfg, err := cfg.TLS.Build()
	if err != nil {
		return nil, errors.Validation("tls: " + err.Error()).WithCause(err)
	}
	if tlsCfg != nil {
		base.TLSClientConfig = tlsCfg
	}

	if cfg.HTTP2 {
		h2, err := http2.ConfigureTransports(base)
		if err != nil {
			return nil, fmt.Errorf("configure http2: %w", err)
		}
		h2.ReadIdleTimeout = h2ReadIdleTimeout
		h2.PingTimeout = h2PingTimeout
	} else {
		base.ForceAttemptHTTP2 = false
		base.TLSNextProto = make(map[string]func(string, *tls.Conn) http.RoundTripper)
	}
	return base, nil
}

// Name returns the transport name.
func (t *HTTP) Name() string { return t.config.Name }

// Dispatch prepares a standard call.
func (t *HTTP) Dispatch(call Call, hooks Hooks) Handle {
	return newHandle(t, call, nil, hooks)
}

// DispatchMultipart prepares a multipart upload built by build.
func (t *HTTP) DispatchMultipart(build func(*Form) error, call Call, hooks Hooks) Handle {
	if build == nil {
		build = func(*Form) error { return nil }
	}
	return newHandle(t, call, build, hooks)
}

// Close stops accepting calls, waits for in-flight calls to complete and
// releases idle connections.
func (t *HTTP) Close(ctx context.Context) error {
	err := t.pool.Close(ctx)
	t.client.CloseIdleConnections()
	return err
}

// Closed reports whether Close has been called.
func (t *HTTP) Closed() bool { return t.pool.Closed() }

// Available reports whether the transport accepts calls and its circuit is
// not open.
func (t *HTTP) Available() bool {
	if t.pool.Closed() {
		return false
	}
	return t.cb == nil || t.cb.State() != resilience.StateOpen
}

// InFlight returns the number of calls currently executing.
func (t *HTTP) InFlight() int { return t.pool.InUse() }

// resolve joins a relative call URL with the base URL.
func (t *HTTP) resolve(raw string) (string, error) {
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return raw, nil
	}
	if t.config.BaseURL == "" {
		return "", errors.Validation(fmt.Sprintf("relative URL %q needs a base URL", raw))
	}
	return strings.TrimRight(t.config.BaseURL, "/") + "/" + strings.TrimLeft(raw, "/"), nil
}

// send performs one round trip. Retryable statuses are returned as errors
// alongside their outcome so the retry loop can consult the decision.
func (t *HTTP) send(ctx context.Context, req *http.Request) (*Outcome, error) {
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, classify(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(ctx, fmt.Errorf("read response body: %w", err))
	}

	out := &Outcome{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}
	if errors.IsRetryableStatus(resp.StatusCode) {
		return out, errors.FromStatus(resp.StatusCode, body)
	}
	return out, nil
}

// classify turns a raw failure into a typed error.
func classify(ctx context.Context, err error) error {
	if _, ok := errors.As(err); ok {
		return err
	}
	if ctx.Err() != nil {
		return errors.Canceled(err)
	}
	return errors.Network(err)
}
