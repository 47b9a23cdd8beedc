package request

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Param is one key/value parameter.
type Param struct {
	Key   string
	Value any
}

// Params is an ordered parameter list. Iteration order is the order in which
// parameters were added, and it is preserved on the wire.
type Params []Param

// ParamsFromMap converts a map into Params sorted by key, giving an
// unordered source a deterministic order.
func ParamsFromMap(m map[string]any) Params {
	if m == nil {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	p := make(Params, 0, len(keys))
	for _, k := range keys {
		p = append(p, Param{Key: k, Value: m[k]})
	}
	return p
}

// Get returns the value of the last parameter named key.
func (p Params) Get(key string) (any, bool) {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i].Key == key {
			return p[i].Value, true
		}
	}
	return nil, false
}

// Len returns the number of parameters.
func (p Params) Len() int { return len(p) }

// MarshalJSON encodes the parameters as a JSON object, keys in order.
// A repeated key is written once per occurrence; decoders keep the last one.
func (p Params) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(kv.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(kv.Value)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", kv.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// EncodeQuery encodes the parameters as a URL query string, in order.
func (p Params) EncodeQuery() (string, error) {
	parts := make([]string, 0, len(p))
	for _, kv := range p {
		text, err := Text(kv.Value)
		if err != nil {
			return "", fmt.Errorf("parameter %q: %w", kv.Key, err)
		}
		parts = append(parts, url.QueryEscape(kv.Key)+"="+url.QueryEscape(text))
	}
	return strings.Join(parts, "&"), nil
}

func (p Params) clone() Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	copy(out, p)
	return out
}

// Text converts a parameter value into the text written into a multipart
// text part or a query string. Strings, byte slices, fmt.Stringer, booleans
// and numbers are accepted; anything else is an error.
func Text(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	case fmt.Stringer:
		return t.String(), nil
	case bool:
		return strconv.FormatBool(t), nil
	case int:
		return strconv.Itoa(t), nil
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", t), nil
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", t), nil
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case nil:
		return "", fmt.Errorf("nil value has no text form")
	default:
		return "", fmt.Errorf("value of type %T has no text form", v)
	}
}
