package errors

import (
	"fmt"
	"net/http"
)

// FromStatus converts a non-2xx HTTP status into a network error.
// Returns nil for 2xx status codes.
func FromStatus(statusCode int, body []byte) *Error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}
	return &Error{
		Kind:       KindNetwork,
		Message:    statusText(statusCode),
		StatusCode: statusCode,
		Retryable:  IsRetryableStatus(statusCode),
		Body:       body,
	}
}

// IsRetryableStatus reports whether a response with this status may succeed
// if resent: 408, 429 and 5xx except 501.
func IsRetryableStatus(statusCode int) bool {
	switch {
	case statusCode == http.StatusRequestTimeout, statusCode == http.StatusTooManyRequests:
		return true
	case statusCode == http.StatusNotImplemented:
		return false
	case statusCode >= 500:
		return true
	default:
		return false
	}
}

func statusText(statusCode int) string {
	if t := http.StatusText(statusCode); t != "" {
		return t
	}
	return fmt.Sprintf("status %d", statusCode)
}
