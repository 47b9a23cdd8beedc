package errors

import (
	stderrors "errors"
	"fmt"
)

// Error is the normalized error outcome of a dispatch.
type Error struct {
	// Kind classifies the failure.
	Kind Kind `json:"kind"`
	// Message is a human-readable description.
	Message string `json:"message"`
	// StatusCode is the HTTP status code, 0 when no response was received.
	StatusCode int `json:"status_code,omitempty"`
	// Retryable indicates whether resending may succeed.
	Retryable bool `json:"retryable"`
	// Body is the response body for status failures (may be nil).
	Body []byte `json:"-"`
	// Cause is the underlying error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	msg := e.Message
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("HTTP %d: %s", e.StatusCode, msg)
	}
	if e.Cause != nil && e.Cause.Error() != e.Message {
		return fmt.Sprintf("synchttp: %s: %s (cause: %v)", e.Kind, msg, e.Cause)
	}
	return fmt.Sprintf("synchttp: %s: %s", e.Kind, msg)
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause and returns the receiver.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// New creates an Error with retryable detection from its kind.
func New(kind Kind, message string) *Error {
	return &Error{
		Kind:      kind,
		Message:   message,
		Retryable: IsRetryableKind(kind),
	}
}

// Newf creates an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

// Validation creates an error for a request rejected before dispatch.
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// Network creates an error wrapping a transport failure.
func Network(cause error) *Error {
	return New(KindNetwork, cause.Error()).WithCause(cause)
}

// Decode creates an error for a body the serializer could not convert.
func Decode(serializer string, cause error) *Error {
	return Newf(KindDecode, "decode response with %s serializer", serializer).WithCause(cause)
}

// Interceptor creates an error signaled by an interceptor hook.
func Interceptor(message string, cause error) *Error {
	return New(KindInterceptor, message).WithCause(cause)
}

// Timeout creates an error for a wait that expired.
func Timeout(cause error) *Error {
	return New(KindTimeout, "dispatch did not complete in time").WithCause(cause)
}

// Canceled creates an error for a wait abandoned by the caller.
func Canceled(cause error) *Error {
	return New(KindCanceled, "dispatch canceled by caller").WithCause(cause)
}

// As returns err as an *Error if it is one (or wraps one).
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the Kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return 0
}

// IsValidation checks if an error is a validation failure.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsNetwork checks if an error is a network failure.
func IsNetwork(err error) bool { return KindOf(err) == KindNetwork }

// IsDecode checks if an error is a decode failure.
func IsDecode(err error) bool { return KindOf(err) == KindDecode }

// IsInterceptor checks if an error was signaled by an interceptor hook.
func IsInterceptor(err error) bool { return KindOf(err) == KindInterceptor }

// IsTimeout checks if an error is a wait timeout.
func IsTimeout(err error) bool { return KindOf(err) == KindTimeout }

// IsCanceled checks if an error is a caller cancellation.
func IsCanceled(err error) bool { return KindOf(err) == KindCanceled }

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	e, ok := As(err)
	return ok && e.Retryable
}
