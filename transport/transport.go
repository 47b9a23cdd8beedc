package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/kbukum/synchttp/request"
)

// Transport dispatches calls asynchronously.
type Transport interface {
	// Dispatch prepares a standard call whose parameters are encoded per
	// call.Encoding.
	Dispatch(call Call, hooks Hooks) Handle
	// DispatchMultipart prepares a multipart upload. build is invoked once
	// to append the form parts; call.Params and call.Encoding are ignored.
	DispatchMultipart(build func(*Form) error, call Call, hooks Hooks) Handle
	// Close stops accepting calls and waits for in-flight calls to finish.
	Close(ctx context.Context) error
}

// Handle is one prepared call.
type Handle interface {
	// OnCompletion registers the completion callback. Only the first
	// registration counts. The callback runs on a transport goroutine,
	// exactly once.
	OnCompletion(fn func(Outcome))
	// Start begins execution without blocking. Calling it twice is a no-op.
	Start()
	// Cancel aborts the call. The completion callback still runs, with a
	// cancellation error, unless the call already completed.
	Cancel()
}

// Call describes the request a transport sends.
type Call struct {
	// Method is the wire HTTP method.
	Method string
	// URL is absolute, or relative to the transport's base URL.
	URL string
	// Params are encoded per Encoding. Unused for multipart calls.
	Params request.Params
	// Encoding selects JSON body or URL query encoding for Params.
	Encoding request.Encoding
	// Headers are merged over the transport defaults; call values win.
	Headers map[string]string
}

// Outcome is the raw completion data of a call.
type Outcome struct {
	// StatusCode is the final response status, 0 when no response arrived.
	StatusCode int
	// Header holds the final response headers.
	Header http.Header
	// Body is the final response body.
	Body []byte
	// Err is the transport-level failure, nil when a response was received.
	// Non-2xx responses are reported through StatusCode, not Err.
	Err error
	// Attempts is the number of send attempts made.
	Attempts int
	// Duration is the time from start to completion.
	Duration time.Duration
}

// RetryAction is the answer of a retry decision.
type RetryAction int

const (
	// GiveUp stops retrying; the last failure becomes the outcome.
	GiveUp RetryAction = iota
	// Retry resends the request after the transport's backoff delay.
	Retry
)

// String returns the action name.
func (a RetryAction) String() string {
	if a == Retry {
		return "retry"
	}
	return "give_up"
}

// AdaptFunc adapts the outgoing request before each attempt. Returning an
// error rejects the request; it is never sent and never retried.
type AdaptFunc func(ctx context.Context, req *http.Request) (*http.Request, error)

// RetryFunc decides whether to resend after the attempt-th failure
// (1-based). err is a transport failure or a retryable status error.
type RetryFunc func(ctx context.Context, err error, attempt int) RetryAction

// Hooks are the interceptor hooks a transport runs during a call.
type Hooks struct {
	Adapt AdaptFunc
	Retry RetryFunc
}

type workerKey struct{}

// IsWorkerContext reports whether ctx belongs to a transport worker, which
// is the case for the context handed to hooks.
func IsWorkerContext(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	v, _ := ctx.Value(workerKey{}).(bool)
	return v
}

func workerContext(parent context.Context) context.Context {
	return context.WithValue(parent, workerKey{}, true)
}
