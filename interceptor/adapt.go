package interceptor

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/kbukum/synchttp/errors"
)

// HeaderRequestID carries the per-request correlation ID.
const HeaderRequestID = "X-Request-ID"

// Chain runs adapters in order, feeding each the request returned by the
// previous one. The first error stops the chain.
func Chain(adapters ...AdaptFunc) AdaptFunc {
	return func(ctx context.Context, req *http.Request) (*http.Request, error) {
		for _, adapt := range adapters {
			if adapt == nil {
				continue
			}
			next, err := adapt(ctx, req)
			if err != nil {
				return nil, err
			}
			if next != nil {
				req = next
			}
		}
		return req, nil
	}
}

// Headers sets each header on the request, replacing existing values.
func Headers(headers map[string]string) AdaptFunc {
	return func(_ context.Context, req *http.Request) (*http.Request, error) {
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return req, nil
	}
}

// RequestID sets a random X-Request-ID unless the request already has one.
// Retried attempts keep the ID of the first attempt.
func RequestID() AdaptFunc {
	return func(_ context.Context, req *http.Request) (*http.Request, error) {
		if req.Header.Get(HeaderRequestID) == "" {
			req.Header.Set(HeaderRequestID, uuid.NewString())
		}
		return req, nil
	}
}

// Bearer sets a static bearer token.
func Bearer(token string) AdaptFunc {
	return func(_ context.Context, req *http.Request) (*http.Request, error) {
		req.Header.Set("Authorization", "Bearer "+token)
		return req, nil
	}
}

// BearerFunc fetches a bearer token before each attempt. A failure rejects
// the request with an interceptor error.
func BearerFunc(token func(ctx context.Context) (string, error)) AdaptFunc {
	return func(ctx context.Context, req *http.Request) (*http.Request, error) {
		t, err := token(ctx)
		if err != nil {
			return nil, errors.Interceptor("obtain bearer token", err)
		}
		req.Header.Set("Authorization", "Bearer "+t)
		return req, nil
	}
}

// Basic sets HTTP basic authentication.
func Basic(username, password string) AdaptFunc {
	return func(_ context.Context, req *http.Request) (*http.Request, error) {
		req.SetBasicAuth(username, password)
		return req, nil
	}
}

// APIKey sets an API key header. An empty name uses X-API-Key.
func APIKey(name, key string) AdaptFunc {
	if name == "" {
		name = "X-API-Key"
	}
	return func(_ context.Context, req *http.Request) (*http.Request, error) {
		req.Header.Set(name, key)
		return req, nil
	}
}
