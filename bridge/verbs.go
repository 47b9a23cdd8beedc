package bridge

import (
	"context"

	"github.com/kbukum/synchttp/interceptor"
	"github.com/kbukum/synchttp/request"
)

// Get dispatches a GET request.
func (c *Client) Get(ctx context.Context, url string, opts ...request.Option) (*interceptor.Result, error) {
	return c.do(ctx, request.MethodGet, url, opts)
}

// Post dispatches a POST request.
func (c *Client) Post(ctx context.Context, url string, opts ...request.Option) (*interceptor.Result, error) {
	return c.do(ctx, request.MethodPost, url, opts)
}

// Put dispatches a PUT request.
func (c *Client) Put(ctx context.Context, url string, opts ...request.Option) (*interceptor.Result, error) {
	return c.do(ctx, request.MethodPut, url, opts)
}

// Delete dispatches a DELETE request.
func (c *Client) Delete(ctx context.Context, url string, opts ...request.Option) (*interceptor.Result, error) {
	return c.do(ctx, request.MethodDelete, url, opts)
}

// Upload dispatches a multipart upload of parts. Parameters become text
// parts after the items. The wire method is POST unless
// request.WithUploadMethod selects PUT.
func (c *Client) Upload(ctx context.Context, url string, parts []request.Part, opts ...request.Option) (*interceptor.Result, error) {
	all := make([]request.Option, 0, len(opts)+1)
	all = append(all, request.WithParts(parts...))
	all = append(all, opts...)
	return c.do(ctx, request.MethodUpload, url, all)
}

func (c *Client) do(ctx context.Context, method request.Method, url string, opts []request.Option) (*interceptor.Result, error) {
	req, err := request.New(method, url, opts...)
	if err != nil {
		return nil, err
	}
	return c.Dispatch(ctx, req)
}
