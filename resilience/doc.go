// Package resilience provides the fault-tolerance building blocks of the
// HTTP transport.
//
// This package includes:
//   - Retry: a retry loop driven by a caller-supplied decision function
//   - Pool: a bounded worker pool that runs transport calls off the caller
//   - CircuitBreaker: fails fast while a backend keeps failing
//   - RateLimiter: paces attempts with a token bucket
//
// The transport composes them per call:
//
//	err := pool.Run(ctx, func() {
//	    resp, err := resilience.Retry(ctx, retryCfg, func(attempt int) (*Response, error) {
//	        if err := rl.Wait(ctx); err != nil {
//	            return nil, err
//	        }
//	        return cb.Execute(send)
//	    })
//	    complete(resp, err)
//	})
package resilience
