package request

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kbukum/synchttp/errors"
	"github.com/kbukum/synchttp/serializer"
)

// Request is the immutable description of one HTTP call. Build it with New;
// accessors return copies so a dispatched Request cannot be changed.
type Request struct {
	method       Method
	url          string
	params       Params
	encoding     Encoding
	headers      map[string]string
	parts        []Part
	serializer   serializer.Serializer
	uploadMethod string
}

// Option configures a Request under construction.
type Option func(*Request)

// WithParams appends parameters, keeping their order.
func WithParams(p Params) Option {
	return func(r *Request) { r.params = append(r.params, p...) }
}

// WithParam appends one parameter.
func WithParam(key string, value any) Option {
	return func(r *Request) { r.params = append(r.params, Param{Key: key, Value: value}) }
}

// WithEncoding selects the parameter encoding of a non-multipart request.
func WithEncoding(e Encoding) Option {
	return func(r *Request) { r.encoding = e }
}

// WithHeaders merges headers into the request, later values winning.
func WithHeaders(h map[string]string) Option {
	return func(r *Request) {
		for k, v := range h {
			r.setHeader(k, v)
		}
	}
}

// WithHeader sets one header.
func WithHeader(key, value string) Option {
	return func(r *Request) { r.setHeader(key, value) }
}

// WithParts appends multipart parts.
func WithParts(parts ...Part) Option {
	return func(r *Request) { r.parts = append(r.parts, parts...) }
}

// WithPart appends one multipart part.
func WithPart(p Part) Option {
	return WithParts(p)
}

// WithSerializer selects how the response body is decoded.
func WithSerializer(s serializer.Serializer) Option {
	return func(r *Request) { r.serializer = s }
}

// WithUploadMethod overrides the wire method of a MethodUpload request.
// Only POST and PUT are accepted.
func WithUploadMethod(method string) Option {
	return func(r *Request) { r.uploadMethod = method }
}

// New builds and validates a Request. Every failure is a KindValidation
// *errors.Error.
func New(method Method, rawURL string, opts ...Option) (*Request, error) {
	r := &Request{method: method}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.build(rawURL); err != nil {
		return nil, err
	}
	return r, nil
}

// MustNew is like New but panics on error. Use it only for requests built
// from constants.
func MustNew(method Method, rawURL string, opts ...Option) *Request {
	r, err := New(method, rawURL, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Request) build(rawURL string) error {
	if !r.method.Valid() {
		return errors.Newf(errors.KindValidation, "unsupported method %q", r.method)
	}

	if rawURL == "" {
		return errors.Validation("url is empty")
	}
	encoded, err := EncodeURL(rawURL)
	if err != nil {
		return errors.Validation(err.Error())
	}
	u, err := url.Parse(encoded)
	if err != nil {
		return errors.Newf(errors.KindValidation, "invalid url: %v", err).WithCause(err)
	}
	if u.Scheme != "" {
		if u.Scheme != "http" && u.Scheme != "https" {
			return errors.Newf(errors.KindValidation, "unsupported url scheme %q", u.Scheme)
		}
		if u.Host == "" {
			return errors.Validation("url has no host")
		}
	}
	r.url = encoded

	for i, p := range r.parts {
		if err := p.validate(i); err != nil {
			return err
		}
		r.parts[i] = p.normalized()
	}
	if r.method == MethodUpload && len(r.parts) == 0 {
		return errors.Validation("upload requires at least one multipart item")
	}
	if r.uploadMethod != "" {
		if r.method != MethodUpload {
			return errors.Validation("upload method override set on a non-upload request")
		}
		if r.uploadMethod != http.MethodPost && r.uploadMethod != http.MethodPut {
			return errors.Newf(errors.KindValidation, "unsupported upload method %q", r.uploadMethod)
		}
	}

	return r.validateParams()
}

func (r *Request) validateParams() error {
	for _, p := range r.params {
		if p.Key == "" {
			return errors.Validation("parameter key is empty")
		}
	}
	switch {
	case len(r.parts) > 0 || r.encoding == EncodingQuery:
		for _, p := range r.params {
			if _, err := Text(p.Value); err != nil {
				return errors.Newf(errors.KindValidation, "parameter %q: %v", p.Key, err).WithCause(err)
			}
		}
	case r.encoding == EncodingJSON:
		if _, err := json.Marshal(r.params); err != nil {
			return errors.Newf(errors.KindValidation, "parameters are not JSON encodable: %v", err).WithCause(err)
		}
	default:
		return errors.Newf(errors.KindValidation, "unsupported encoding %d", r.encoding)
	}
	return nil
}

func (r *Request) setHeader(key, value string) {
	if r.headers == nil {
		r.headers = make(map[string]string)
	}
	r.headers[http.CanonicalHeaderKey(key)] = value
}

// Method returns the descriptor method.
func (r *Request) Method() Method { return r.method }

// WireMethod returns the HTTP method sent on the wire.
func (r *Request) WireMethod() string {
	if r.method != MethodUpload {
		return string(r.method)
	}
	if r.uploadMethod != "" {
		return r.uploadMethod
	}
	return http.MethodPost
}

// URL returns the percent-encoded URL.
func (r *Request) URL() string { return r.url }

// Params returns a copy of the parameters.
func (r *Request) Params() Params { return r.params.clone() }

// Encoding returns the parameter encoding.
func (r *Request) Encoding() Encoding { return r.encoding }

// Headers returns a copy of the request headers.
func (r *Request) Headers() map[string]string {
	if r.headers == nil {
		return nil
	}
	out := make(map[string]string, len(r.headers))
	for k, v := range r.headers {
		out[k] = v
	}
	return out
}

// Parts returns a copy of the multipart parts.
func (r *Request) Parts() []Part {
	if r.parts == nil {
		return nil
	}
	out := make([]Part, len(r.parts))
	for i, p := range r.parts {
		out[i] = p.normalized()
	}
	return out
}

// IsMultipart reports whether the request is sent as a multipart upload.
func (r *Request) IsMultipart() bool { return len(r.parts) > 0 }

// Serializer returns the response serializer, nil when unset.
func (r *Request) Serializer() serializer.Serializer { return r.serializer }

// String returns "METHOD url" for logs.
func (r *Request) String() string {
	return fmt.Sprintf("%s %s", r.method, r.url)
}
