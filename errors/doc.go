// Package errors defines the normalized error outcome of a synchronous dispatch.
//
// Every failure surfaced by the bridge is an *Error carrying a Kind:
//
//   - KindValidation: the request was malformed and never reached the transport
//   - KindNetwork: the transport failed to send or receive, or the server
//     answered with a status the transport treats as failure
//   - KindDecode: the response body could not be decoded by the serializer
//   - KindInterceptor: an adapt or response hook produced a domain error
//   - KindTimeout, KindCanceled: the caller stopped waiting
//
// Use the Is* predicates or KindOf to branch on the kind:
//
//	res, err := client.Get(ctx, "https://api.example.com/users")
//	if errors.IsNetwork(err) && errors.IsRetryable(err) {
//	    ...
//	}
package errors
