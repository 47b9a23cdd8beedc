package interceptor

import (
	"context"
	"net/http"

	"github.com/kbukum/synchttp/request"
	"github.com/kbukum/synchttp/transport"
)

// RetryAction is the answer of a retry decision.
type RetryAction = transport.RetryAction

// Retry decisions.
const (
	GiveUp = transport.GiveUp
	Retry  = transport.Retry
)

// Result is the successful outcome of a dispatch.
type Result struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int
	// Headers are the response headers.
	Headers http.Header
	// Body is the raw response body.
	Body []byte
	// Value is the body decoded by the request's serializer.
	Value any
}

// AdaptFunc rewrites or rejects the outgoing request before each attempt.
type AdaptFunc = transport.AdaptFunc

// RetryDecisionFunc decides whether req is resent after its attempt-th
// failure (1-based).
type RetryDecisionFunc func(req *request.Request, err error, attempt int) RetryAction

// ResponseFunc converts the raw outcome of req into a Result or an error.
type ResponseFunc func(req *request.Request, out transport.Outcome) (*Result, error)

// Interceptor groups the hooks run around a dispatch.
type Interceptor struct {
	Adapt    AdaptFunc
	Retry    RetryDecisionFunc
	Response ResponseFunc
}

// Default returns the interceptor used when none is configured.
func Default() Interceptor {
	return Interceptor{Retry: NeverRetry, Response: DefaultResponseHandler}
}

// WithDefaults returns i with nil Retry and Response hooks replaced by the
// defaults. Adapt stays nil when unset.
func (i Interceptor) WithDefaults() Interceptor {
	if i.Retry == nil {
		i.Retry = NeverRetry
	}
	if i.Response == nil {
		i.Response = DefaultResponseHandler
	}
	return i
}

// Hooks binds the interceptor to req for the transport.
func (i Interceptor) Hooks(req *request.Request) transport.Hooks {
	hooks := transport.Hooks{Adapt: i.Adapt}
	if i.Retry != nil {
		decide := i.Retry
		hooks.Retry = func(_ context.Context, err error, attempt int) RetryAction {
			return decide(req, err, attempt)
		}
	}
	return hooks
}

// NeverRetry gives up on every failure.
func NeverRetry(*request.Request, error, int) RetryAction {
	return GiveUp
}
