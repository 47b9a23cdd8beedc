// Package transport is the asynchronous HTTP collaborator behind the
// synchronous bridge.
//
// A Transport turns a Call into a Handle. The caller registers exactly one
// completion callback with OnCompletion and then calls Start, which returns
// immediately; the request runs on a transport worker goroutine, retries
// under control of the Hooks.Retry decision, and finally invokes the
// completion callback exactly once with the raw Outcome.
//
//	h := t.Dispatch(transport.Call{Method: "GET", URL: "https://api.example.com/users"}, hooks)
//	h.OnCompletion(func(o transport.Outcome) { ... })
//	h.Start()
//
// HTTP is the net/http implementation. It runs calls on a bounded worker
// pool, so code running on a worker (inside a hook or a completion
// callback) must never block waiting for another call on the same
// transport; IsWorkerContext identifies such code.
package transport
