// Package bridge turns the asynchronous transport into blocking calls.
//
// A Client hands each request to its Transport, waits until the single
// completion arrives (or the context or client timeout ends the wait), runs
// the response through the client's Interceptor and returns either a
// Result or an *errors.Error:
//
//	client, err := bridge.NewFromConfig(cfg)
//	res, err := client.Get(ctx, "https://api.example.com/users/7")
//	if errors.IsNetwork(err) { ... }
//
// Each Client owns its Interceptor; SetInterceptor affects dispatches
// started afterwards. Dispatch must not be called from interceptor hooks,
// which run on transport workers; such calls fail with ErrWorkerReentry.
package bridge
