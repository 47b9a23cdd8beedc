package request

import "net/http"

// Method is the verb of a request descriptor.
type Method string

const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodDelete Method = http.MethodDelete
	// MethodUpload is a multipart upload. It is sent as POST unless the
	// request overrides the wire method with WithUploadMethod.
	MethodUpload Method = "UPLOAD"
)

// Valid reports whether m is one of the supported methods.
func (m Method) Valid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodDelete, MethodUpload:
		return true
	}
	return false
}

// String returns the method name.
func (m Method) String() string { return string(m) }

// Encoding selects how parameters of a non-multipart request are written.
type Encoding int

const (
	// EncodingJSON writes parameters as a JSON object body.
	EncodingJSON Encoding = iota
	// EncodingQuery appends parameters to the URL query string.
	EncodingQuery
)

// String returns the encoding name.
func (e Encoding) String() string {
	switch e {
	case EncodingJSON:
		return "json"
	case EncodingQuery:
		return "query"
	default:
		return "unknown"
	}
}
