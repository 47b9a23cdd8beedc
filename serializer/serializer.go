// Package serializer provides the strategies that turn raw response bytes
// into decoded values.
package serializer

import (
	"bytes"
	"encoding/json"
	"mime"
	"strings"

	"sigs.k8s.io/yaml"
)

// Serializer decodes a response body.
type Serializer interface {
	// Name identifies the serializer in errors and logs.
	Name() string
	// Decode converts body into a value. contentType is the response
	// Content-Type header and may be empty.
	Decode(contentType string, body []byte) (any, error)
}

// Func adapts a function into a Serializer.
type Func struct {
	N  string
	Fn func(contentType string, body []byte) (any, error)
}

// Name implements Serializer.
func (f Func) Name() string { return f.N }

// Decode implements Serializer.
func (f Func) Decode(contentType string, body []byte) (any, error) {
	return f.Fn(contentType, body)
}

type rawSerializer struct{}

// Raw returns the body unchanged as []byte.
func Raw() Serializer { return rawSerializer{} }

func (rawSerializer) Name() string { return "raw" }

func (rawSerializer) Decode(_ string, body []byte) (any, error) {
	return body, nil
}

type stringSerializer struct{}

// String returns the body as a string.
func String() Serializer { return stringSerializer{} }

func (stringSerializer) Name() string { return "string" }

func (stringSerializer) Decode(_ string, body []byte) (any, error) {
	return string(body), nil
}

type jsonSerializer struct{}

// JSON decodes the body into generic JSON values (map[string]any, []any,
// float64, string, bool or nil). An empty body decodes to nil.
func JSON() Serializer { return jsonSerializer{} }

func (jsonSerializer) Name() string { return "json" }

func (jsonSerializer) Decode(_ string, body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	return v, nil
}

type yamlSerializer struct{}

// YAML decodes a YAML (or JSON) body into generic values. An empty body
// decodes to nil.
func YAML() Serializer { return yamlSerializer{} }

func (yamlSerializer) Name() string { return "yaml" }

func (yamlSerializer) Decode(_ string, body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	var v any
	if err := yaml.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Into returns a serializer that JSON-decodes the body into a fresh *T.
func Into[T any]() Serializer {
	return Func{
		N: "json",
		Fn: func(_ string, body []byte) (any, error) {
			out := new(T)
			if len(bytes.TrimSpace(body)) == 0 {
				return out, nil
			}
			if err := json.Unmarshal(body, out); err != nil {
				return nil, err
			}
			return out, nil
		},
	}
}

type autoSerializer struct{}

// Auto picks a serializer from the response Content-Type: JSON for
// application/json and +json types, YAML for yaml types, String for text/*,
// Raw otherwise. It is the default when a request names no serializer.
func Auto() Serializer { return autoSerializer{} }

func (autoSerializer) Name() string { return "auto" }

func (autoSerializer) Decode(contentType string, body []byte) (any, error) {
	return ForContentType(contentType).Decode(contentType, body)
}

// ForContentType returns the serializer Auto uses for contentType.
func ForContentType(contentType string) Serializer {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	switch {
	case mediaType == "application/json", strings.HasSuffix(mediaType, "+json"):
		return JSON()
	case strings.Contains(mediaType, "yaml"):
		return YAML()
	case strings.HasPrefix(mediaType, "text/"):
		return String()
	default:
		return Raw()
	}
}
