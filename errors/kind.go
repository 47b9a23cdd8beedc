package errors

// Kind classifies a dispatch failure.
type Kind int

const (
	// KindValidation indicates a malformed request detected before dispatch.
	KindValidation Kind = iota + 1
	// KindNetwork indicates a transport-level send/receive failure.
	KindNetwork
	// KindDecode indicates the response bytes could not be decoded.
	KindDecode
	// KindInterceptor indicates an interceptor hook signaled a domain error.
	KindInterceptor
	// KindTimeout indicates the caller's wait expired before completion.
	KindTimeout
	// KindCanceled indicates the caller's context was canceled before completion.
	KindCanceled
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNetwork:
		return "network"
	case KindDecode:
		return "decode"
	case KindInterceptor:
		return "interceptor"
	case KindTimeout:
		return "timeout"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

var retryableKinds = map[Kind]bool{
	KindNetwork: true,
	KindTimeout: true,
}

// IsRetryableKind returns true if failures of this kind are retryable by default.
func IsRetryableKind(k Kind) bool {
	return retryableKinds[k]
}
