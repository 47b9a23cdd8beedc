// Package interceptor defines the hooks a client runs around every
// dispatch.
//
// An Interceptor has three hooks:
//
//   - Adapt rewrites or rejects the outgoing request before each attempt.
//   - Retry decides, after each retryable failure, whether to resend.
//   - Response turns the raw transport outcome into a Result or an error.
//
// Nil hooks fall back to the defaults: no adaptation, never retry, and
// DefaultResponseHandler.
//
//	client.SetInterceptor(interceptor.Interceptor{
//	    Adapt: interceptor.Chain(interceptor.RequestID(), interceptor.Bearer(token)),
//	    Retry: interceptor.RetryUpTo(3),
//	})
package interceptor
