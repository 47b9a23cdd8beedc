package logger

import "time"

// Standard field key constants for structured logging.
const (
	FieldComponent  = "component"
	FieldService    = "service"
	FieldRequestID  = "request_id"
	FieldMethod     = "method"
	FieldURL        = "url"
	FieldAttempt    = "attempt"
	FieldStatus     = "status"
	FieldKind       = "kind"
	FieldError      = "error"
	FieldDuration   = "duration_ms"
	FieldBackoff    = "backoff_ms"
	FieldTransport  = "transport"
	FieldMultipart  = "multipart"
	FieldPartCount  = "parts"
	FieldParamCount = "params"
)

// Fields builds a map from alternating key-value pairs.
//
//	log.Info("done", logger.Fields(logger.FieldStatus, 200, logger.FieldAttempt, 2))
func Fields(kvs ...any) map[string]any {
	m := make(map[string]any, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// DurationFields creates fields for a timed step.
func DurationFields(d time.Duration) map[string]any {
	return map[string]any{FieldDuration: d.Milliseconds()}
}
