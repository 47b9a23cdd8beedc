package request

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const upperhex = "0123456789ABCDEF"

// EncodeURL percent-encodes every byte of raw outside the query-allowed
// character set: ASCII letters, digits and !$&'()*+,-./:;=?@_~. '%' is
// outside that set, so an already-encoded URL is encoded again ("%20"
// becomes "%2520"); pass URLs unencoded. The scheme and authority of an absolute URL are left as written so IPv6
// literals keep their brackets. raw must be valid UTF-8.
func EncodeURL(raw string) (string, error) {
	if !utf8.ValidString(raw) {
		return "", fmt.Errorf("url is not valid UTF-8")
	}
	prefix, rest := splitAuthority(raw)
	encoded := encodeQueryAllowed(rest)
	if prefix == "" {
		return encoded, nil
	}
	return prefix + encoded, nil
}

// splitAuthority splits "scheme://authority" off the front of raw.
func splitAuthority(raw string) (string, string) {
	i := strings.Index(raw, "://")
	if i <= 0 || !isScheme(raw[:i]) {
		return "", raw
	}
	start := i + len("://")
	end := strings.IndexAny(raw[start:], "/?#")
	if end < 0 {
		return raw, ""
	}
	return raw[:start+end], raw[start+end:]
}

func encodeQueryAllowed(raw string) string {
	n := 0
	for i := 0; i < len(raw); i++ {
		if !isQueryAllowed(raw[i]) {
			n++
		}
	}
	if n == 0 {
		return raw
	}
	out := make([]byte, 0, len(raw)+2*n)
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if isQueryAllowed(c) {
			out = append(out, c)
			continue
		}
		out = append(out, '%', upperhex[c>>4], upperhex[c&15])
	}
	return string(out)
}

func isQueryAllowed(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '!', '$', '&', '\'', '(', ')', '*', '+', ',', '-', '.', '/', ':', ';', '=', '?', '@', '_', '~':
		return true
	}
	return false
}

func isScheme(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case i > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}
