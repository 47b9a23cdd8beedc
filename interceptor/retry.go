package interceptor

import (
	"github.com/kbukum/synchttp/errors"
	"github.com/kbukum/synchttp/request"
)

// RetryUpTo retries retryable failures until n attempts have been made in
// total.
func RetryUpTo(n int) RetryDecisionFunc {
	return RetryIf(errors.IsRetryable, n)
}

// RetryIf retries failures accepted by pred until n attempts have been made
// in total.
func RetryIf(pred func(error) bool, n int) RetryDecisionFunc {
	return func(_ *request.Request, err error, attempt int) RetryAction {
		if attempt >= n || (pred != nil && !pred(err)) {
			return GiveUp
		}
		return Retry
	}
}

// RetryIdempotent retries only requests whose method is safe to resend,
// deferring to next for the decision.
func RetryIdempotent(next RetryDecisionFunc) RetryDecisionFunc {
	return func(req *request.Request, err error, attempt int) RetryAction {
		switch req.Method() {
		case request.MethodGet, request.MethodPut, request.MethodDelete:
			return next(req, err, attempt)
		default:
			return GiveUp
		}
	}
}
