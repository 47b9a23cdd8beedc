package interceptor

import (
	"github.com/kbukum/synchttp/errors"
	"github.com/kbukum/synchttp/request"
	"github.com/kbukum/synchttp/serializer"
	"github.com/kbukum/synchttp/transport"
)

// DefaultResponseHandler maps transport failures to network errors,
// non-2xx statuses to network errors carrying the status, and decodes
// successful bodies with the request's serializer (content-type based when
// unset). A body the serializer rejects is a decode error.
func DefaultResponseHandler(req *request.Request, out transport.Outcome) (*Result, error) {
	if out.Err != nil {
		if _, ok := errors.As(out.Err); ok {
			return nil, out.Err
		}
		return nil, errors.Network(out.Err)
	}
	if e := errors.FromStatus(out.StatusCode, out.Body); e != nil {
		return nil, e
	}

	s := req.Serializer()
	if s == nil {
		s = serializer.Auto()
	}
	value, err := s.Decode(out.Header.Get("Content-Type"), out.Body)
	if err != nil {
		return nil, errors.Decode(s.Name(), err)
	}
	return &Result{
		StatusCode: out.StatusCode,
		Headers:    out.Header,
		Body:       out.Body,
		Value:      value,
	}, nil
}
