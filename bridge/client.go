package bridge

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/synchttp/errors"
	"github.com/kbukum/synchttp/interceptor"
	"github.com/kbukum/synchttp/logger"
	"github.com/kbukum/synchttp/request"
	"github.com/kbukum/synchttp/transport"
)

const tracerName = "github.com/kbukum/synchttp/bridge"

// ErrWorkerReentry is the cause of the validation error Dispatch returns
// when called from a transport worker, where waiting would hold the worker
// the call needs. Match it with errors.Is.
var ErrWorkerReentry = stderrors.New("dispatch called from a transport worker")

// Client is the synchronous HTTP client.
type Client struct {
	transport transport.Transport
	log       *logger.Logger
	timeout   time.Duration
	metrics   *Metrics
	tracer    trace.Tracer

	mu          sync.RWMutex
	interceptor interceptor.Interceptor
}

// Option configures a Client.
type Option func(*Client)

// WithInterceptor sets the initial interceptor.
func WithInterceptor(i interceptor.Interceptor) Option {
	return func(c *Client) { c.interceptor = i }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithTimeout bounds every wait. Zero waits until completion or until the
// caller's context ends.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithMetrics records dispatch metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTracer sets the tracer for dispatch spans. Defaults to the global
// OpenTelemetry provider.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// New creates a client over t. It panics if t is nil.
func New(t transport.Transport, opts ...Option) *Client {
	if t == nil {
		panic("bridge: nil transport")
	}
	c := &Client{
		transport:   t,
		log:         logger.Nop(),
		tracer:      otel.Tracer(tracerName),
		interceptor: interceptor.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithComponent("bridge")
	return c
}

// Interceptor returns the interceptor used by new dispatches.
func (c *Client) Interceptor() interceptor.Interceptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.interceptor
}

// SetInterceptor replaces the interceptor. In-flight dispatches keep the
// one they started with.
func (c *Client) SetInterceptor(i interceptor.Interceptor) {
	c.mu.Lock()
	c.interceptor = i
	c.mu.Unlock()
}

// Transport returns the underlying transport.
func (c *Client) Transport() transport.Transport { return c.transport }

// Close closes the transport. Later dispatches fail with a network error.
func (c *Client) Close(ctx context.Context) error {
	return c.transport.Close(ctx)
}

// Dispatch sends req and blocks until its outcome is known.
func (c *Client) Dispatch(ctx context.Context, req *request.Request) (*interceptor.Result, error) {
	if req == nil {
		return nil, errors.Validation("nil request")
	}
	if transport.IsWorkerContext(ctx) {
		return nil, errors.Validation(ErrWorkerReentry.Error()).WithCause(ErrWorkerReentry)
	}

	id := uuid.NewString()
	ic := c.Interceptor().WithDefaults()
	ctx, span := c.tracer.Start(ctx, "synchttp.Dispatch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("synchttp.dispatch_id", id),
			attribute.String("http.request.method", req.WireMethod()),
			attribute.String("url.full", req.URL()),
			attribute.Bool("synchttp.multipart", req.IsMultipart()),
		))
	defer span.End()

	log := c.log.WithFields(logger.Fields(
		logger.FieldRequestID, id,
		logger.FieldMethod, req.WireMethod(),
		logger.FieldURL, req.URL(),
	))

	c.metrics.start()
	start := time.Now()
	res, err := c.wait(ctx, req, ic, span, log)
	elapsed := time.Since(start)
	c.metrics.finish(req.Method(), err, elapsed)

	fields := logger.DurationFields(elapsed)
	if err != nil {
		fields[logger.FieldKind] = errors.KindOf(err).String()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.WithError(err).Warn("dispatch failed", fields)
		return nil, err
	}
	fields[logger.FieldStatus] = res.StatusCode
	span.SetAttributes(attribute.Int("http.response.status_code", res.StatusCode))
	log.Debug("dispatch completed", fields)
	return res, nil
}

type completion struct {
	res *interceptor.Result
	err error
}

// wait starts the transport call and blocks for its single completion.
func (c *Client) wait(ctx context.Context, req *request.Request, ic interceptor.Interceptor, span trace.Span, log *logger.Logger) (*interceptor.Result, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	hooks := ic.Hooks(req)
	hooks.Adapt = withSpan(span, hooks.Adapt)
	h := c.prepare(req, hooks)

	// Capacity 1 so a completion that arrives after the wait ended never blocks.
	done := make(chan completion, 1)
	var (
		once      sync.Once
		abandoned atomic.Bool
	)
	h.OnCompletion(func(out transport.Outcome) {
		first := false
		once.Do(func() {
			first = true
			if abandoned.Load() {
				log.Debug("late completion discarded", logger.Fields(logger.FieldAttempt, out.Attempts))
				return
			}
			res, err := respond(ic.Response, req, out)
			done <- completion{res: res, err: err}
		})
		if !first {
			log.Error("duplicate completion ignored")
		}
	})
	h.Start()

	select {
	case o := <-done:
		return o.unwrap()
	case <-ctx.Done():
	}

	abandoned.Store(true)
	select {
	case o := <-done:
		return o.unwrap()
	default:
	}
	h.Cancel()
	if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, errors.Timeout(ctx.Err())
	}
	return nil, errors.Canceled(ctx.Err())
}

func (o completion) unwrap() (*interceptor.Result, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.res, nil
}

// respond runs the response handler. Errors win over results, plain errors
// become interceptor errors and an empty answer is an interceptor error.
func respond(handle interceptor.ResponseFunc, req *request.Request, out transport.Outcome) (*interceptor.Result, error) {
	res, err := handle(req, out)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.Interceptor(err.Error(), err)
	}
	if res == nil {
		return nil, errors.Interceptor("response handler produced no outcome", nil)
	}
	return res, nil
}

// prepare builds the transport call for req.
func (c *Client) prepare(req *request.Request, hooks transport.Hooks) transport.Handle {
	call := transport.Call{
		Method:  req.WireMethod(),
		URL:     req.URL(),
		Headers: req.Headers(),
	}
	if !req.IsMultipart() {
		call.Params = req.Params()
		call.Encoding = req.Encoding()
		return c.transport.Dispatch(call, hooks)
	}
	return c.transport.DispatchMultipart(formBuilder(req), call, hooks)
}

// formBuilder appends one part per multipart item, then one text part per
// parameter in order.
func formBuilder(req *request.Request) func(*transport.Form) error {
	parts, params := req.Parts(), req.Params()
	return func(f *transport.Form) error {
		for _, p := range parts {
			if p.IsFile() {
				f.AppendFile(p.FileKey, p.FilePath, p.FileName, p.MimeType)
			} else {
				f.AppendData(p.FileKey, p.Data, p.FileName, p.MimeType)
			}
		}
		for _, kv := range params {
			text, err := request.Text(kv.Value)
			if err != nil {
				return errors.Validation(fmt.Sprintf("parameter %q: %v", kv.Key, err))
			}
			f.AppendField(kv.Key, []byte(text))
		}
		return nil
	}
}

// withSpan parents transport spans under the dispatch span.
func withSpan(span trace.Span, next transport.AdaptFunc) transport.AdaptFunc {
	return func(ctx context.Context, r *http.Request) (*http.Request, error) {
		r = r.WithContext(trace.ContextWithSpan(r.Context(), span))
		if next == nil {
			return r, nil
		}
		return next(ctx, r)
	}
}
