package transport

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kbukum/synchttp/errors"
	"github.com/kbukum/synchttp/logger"
	"github.com/kbukum/synchttp/request"
	"github.com/kbukum/synchttp/resilience"
	"github.com/kbukum/synchttp/version"
)

// handle is one call on an HTTP transport.
type handle struct {
	t     *HTTP
	call  Call
	build func(*Form) error
	hooks Hooks

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	fn      func(Outcome)
	started bool
	done    bool
	pending *Outcome
}

func newHandle(t *HTTP, call Call, build func(*Form) error, hooks Hooks) *handle {
	ctx, cancel := context.WithCancel(context.Background())
	return &handle{
		t:      t,
		call:   call,
		build:  build,
		hooks:  hooks,
		ctx:    workerContext(ctx),
		cancel: cancel,
	}
}

func (h *handle) OnCompletion(fn func(Outcome)) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	if h.fn != nil {
		h.mu.Unlock()
		return
	}
	h.fn = fn
	pending := h.pending
	h.pending = nil
	h.mu.Unlock()

	if pending != nil {
		fn(*pending)
	}
}

func (h *handle) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.started {
		return
	}
	h.started = true
	go h.run()
}

func (h *handle) Cancel() {
	h.cancel()
}

// complete delivers the outcome at most once.
func (h *handle) complete(out Outcome) {
	h.mu.Lock()
	if h.done {
		h.mu.Unlock()
		h.t.log.Error("call completed twice; outcome dropped", h.fields())
		return
	}
	h.done = true
	fn := h.fn
	if fn == nil {
		h.pending = &out
	}
	h.mu.Unlock()

	h.cancel()
	if fn != nil {
		fn(out)
	}
}

func (h *handle) run() {
	start := time.Now()
	err := h.t.pool.Run(h.ctx, func() {
		out := h.execute()
		out.Duration = time.Since(start)
		h.complete(out)
	})
	if err != nil {
		h.complete(Outcome{Err: h.rejected(err), Duration: time.Since(start)})
	}
}

func (h *handle) rejected(err error) error {
	switch {
	case stderrors.Is(err, resilience.ErrPoolClosed):
		e := errors.New(errors.KindNetwork, "transport closed").WithCause(err)
		e.Retryable = false
		return e
	case h.ctx.Err() != nil:
		return errors.Canceled(err)
	default:
		return errors.Network(err)
	}
}

type payload struct {
	url         string
	body        []byte
	contentType string
}

func (h *handle) execute() Outcome {
	p, err := h.prepare()
	if err != nil {
		return Outcome{Err: err}
	}

	var attempts int
	out, err := resilience.Retry(h.ctx, resilience.RetryConfig{
		Backoff:     h.t.config.Backoff,
		ShouldRetry: h.shouldRetry,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			h.t.log.Warn("retrying call", h.fields(
				logger.FieldAttempt, attempt,
				logger.FieldBackoff, backoff.Milliseconds(),
				logger.FieldError, err.Error(),
			))
		},
	}, func(attempt int) (*Outcome, error) {
		attempts = attempt
		return h.attempt(p, attempt)
	})

	if out == nil {
		out = &Outcome{}
	}
	if err != nil && (out.StatusCode == 0 || h.ctx.Err() != nil) {
		out.Err = classify(h.ctx, err)
	}
	out.Attempts = attempts
	return *out
}

// shouldRetry asks the retry hook about network failures and retryable
// statuses. Rejections and cancellations end the call.
func (h *handle) shouldRetry(attempt int, err error) bool {
	if h.hooks.Retry == nil || h.ctx.Err() != nil {
		return false
	}
	if !errors.IsNetwork(err) && !errors.IsTimeout(err) {
		return false
	}
	return h.hooks.Retry(h.ctx, err, attempt) == Retry
}

// prepare resolves the URL and encodes the body once per call.
func (h *handle) prepare() (payload, error) {
	u, err := h.t.resolve(h.call.URL)
	if err != nil {
		return payload{}, err
	}
	p := payload{url: u}

	if h.build != nil {
		form := &Form{}
		if err := h.build(form); err != nil {
			if _, ok := errors.As(err); ok {
				return payload{}, err
			}
			return payload{}, errors.Validation("build multipart form: " + err.Error()).WithCause(err)
		}
		body, contentType, err := form.encode()
		if err != nil {
			return payload{}, errors.Validation("encode multipart form: " + err.Error()).WithCause(err)
		}
		p.body, p.contentType = body, contentType
		return p, nil
	}

	if h.call.Params.Len() == 0 {
		return p, nil
	}
	switch h.call.Encoding {
	case request.EncodingQuery:
		q, err := h.call.Params.EncodeQuery()
		if err != nil {
			return payload{}, errors.Validation("encode query: " + err.Error()).WithCause(err)
		}
		sep := "?"
		if strings.Contains(p.url, "?") {
			sep = "&"
		}
		p.url += sep + q
	default:
		body, err := json.Marshal(h.call.Params)
		if err != nil {
			return payload{}, errors.Validation("encode JSON body: " + err.Error()).WithCause(err)
		}
		p.body, p.contentType = body, "application/json"
	}
	return p, nil
}

func (h *handle) attempt(p payload, n int) (*Outcome, error) {
	if h.t.rl != nil {
		if err := h.t.rl.Wait(h.ctx); err != nil {
			return nil, classify(h.ctx, err)
		}
	}

	req, err := h.newRequest(p)
	if err != nil {
		return nil, err
	}
	if h.hooks.Adapt != nil {
		adapted, err := h.hooks.Adapt(h.ctx, req)
		if err != nil {
			if _, ok := errors.As(err); ok {
				return nil, err
			}
			return nil, errors.Validation(err.Error()).WithCause(err)
		}
		if adapted != nil {
			req = adapted
		}
	}

	var out *Outcome
	send := func() error {
		var err error
		out, err = h.t.send(h.ctx, req)
		return err
	}
	if h.t.cb != nil {
		err = h.t.cb.Execute(send)
		if stderrors.Is(err, resilience.ErrCircuitOpen) {
			err = errors.Network(err)
		}
	} else {
		err = send()
	}

	fields := h.fields(logger.FieldAttempt, n)
	if out != nil {
		fields[logger.FieldStatus] = out.StatusCode
	}
	if err != nil {
		fields[logger.FieldError] = err.Error()
	}
	h.t.log.Debug("attempt finished", fields)
	return out, err
}

func (h *handle) newRequest(p payload) (*http.Request, error) {
	var body io.Reader
	if p.body != nil {
		body = bytes.NewReader(p.body)
	}
	req, err := http.NewRequestWithContext(h.ctx, h.call.Method, p.url, body)
	if err != nil {
		return nil, errors.Validation("create request: " + err.Error()).WithCause(err)
	}
	if p.body != nil {
		data := p.body
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		}
	}

	req.Header.Set("User-Agent", version.UserAgent())
	for k, v := range h.t.config.Headers {
		req.Header.Set(k, v)
	}
	for k, v := range h.call.Headers {
		req.Header.Set(k, v)
	}
	if p.contentType != "" && (h.build != nil || req.Header.Get("Content-Type") == "") {
		req.Header.Set("Content-Type", p.contentType)
	}
	return req, nil
}

func (h *handle) fields(kvs ...any) map[string]any {
	f := logger.Fields(kvs...)
	f[logger.FieldMethod] = h.call.Method
	f[logger.FieldURL] = h.call.URL
	if h.build != nil {
		f[logger.FieldMultipart] = true
	}
	return f
}
