package http

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/textproto"
	"strings"
	"sync"
)

const (
	headerContentType   = "Content-Type"
	headerAuthorization = "Authorization"

	contentTypeJSON = "application/json; charset=utf-8"
)

// RequestSpec is the record of a fully resolved request. It is built fresh
// for every call and is not modified once the call completes; after the
// round trip its Headers also include the fields the transport itself wrote.
type RequestSpec struct {
	// URL is the base URL with the call path appended verbatim. No slash
	// normalization is performed; callers own correct concatenation.
	URL string

	// Method is the HTTP method, uppercased.
	Method string

	// Headers holds every header recorded for the call: base-config
	// defaults first, per-call additions for keys not already present,
	// the computed Authorization value, and the headers the transport
	// added at transmission time (Host, User-Agent, Content-Length, ...).
	Headers map[string]string

	// Body is the exact payload text sent; empty means no body was sent.
	Body string

	// Auth is the basic-auth pair copied from the client, nil when unset.
	Auth *BasicAuth

	// Certificate is the client certificate copied from the client.
	Certificate *tls.Certificate
}

// newRequestSpec resolves the URL, uppercases the method and merges headers.
// Base-config headers form the starting map; per-call keys are added only
// when absent, so a call can never overwrite a configured default.
func (c *Client) newRequestSpec(method, path string, headers map[string]string) *RequestSpec {
	spec := &RequestSpec{
		URL:         c.baseURL + path,
		Method:      strings.ToUpper(method),
		Headers:     make(map[string]string, len(c.headers)+len(headers)),
		Certificate: c.cert,
	}

	if c.auth != nil {
		auth := *c.auth
		spec.Auth = &auth
	}

	for key, value := range c.headers {
		spec.Headers[key] = value
	}
	for key, value := range headers {
		if _, ok := spec.Headers[key]; !ok {
			spec.Headers[key] = value
		}
	}

	return spec
}

// buildHTTPRequest materializes a RequestSpec as a net/http request. When
// both auth fields are non-blank the Authorization header is computed here
// and recorded back on s.Headers, overriding any merged value, so the
// capture matches what is transmitted.
func (s *RequestSpec) buildHTTPRequest(ctx context.Context) (*http.Request, error) {
	var bodyReader io.Reader
	if s.Body != "" {
		bodyReader = strings.NewReader(s.Body)
	}

	req, err := http.NewRequestWithContext(ctx, s.Method, s.URL, bodyReader)
	if err != nil {
		return nil, err
	}

	for key, value := range s.Headers {
		req.Header.Set(key, value)
	}

	if s.Auth != nil && s.Auth.Username != "" && s.Auth.Password != "" {
		value := basicAuthValue(s.Auth.Username, s.Auth.Password)
		req.Header.Set(headerAuthorization, value)
		s.Headers[headerAuthorization] = value
	}

	return req, nil
}

// basicAuthValue encodes a Basic authorization header value.
func basicAuthValue(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

// encodeBody turns a caller-supplied body into the exact payload text to
// transmit. Strings and byte slices pass through untouched; anything else
// is marshaled to JSON.
func encodeBody(body interface{}) (string, error) {
	switch b := body.(type) {
	case nil:
		return "", nil
	case string:
		return b, nil
	case []byte:
		return string(b), nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

// wroteHeaderSet accumulates the header fields the transport reports having
// written. httptrace callbacks can fire on transport goroutines, so records
// are locked; merging happens once the round trip is over.
type wroteHeaderSet struct {
	mu     sync.Mutex
	fields map[string]string
}

func newWroteHeaderSet() *wroteHeaderSet {
	return &wroteHeaderSet{fields: make(map[string]string)}
}

func (w *wroteHeaderSet) record(key string, values []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.fields[key] = strings.Join(values, ", ")
}

// mergeInto adds transport-written fields to headers without clobbering
// caller-specified values. The wire writes canonical keys while recorded
// keys keep the caller's spelling, so existence is checked in canonical
// form to avoid re-adding a header under a second casing.
func (w *wroteHeaderSet) mergeInto(headers map[string]string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	seen := make(map[string]bool, len(headers))
	for key := range headers {
		seen[textproto.CanonicalMIMEHeaderKey(key)] = true
	}
	for key, value := range w.fields {
		if seen[textproto.CanonicalMIMEHeaderKey(key)] {
			continue
		}
		headers[key] = value
	}
}
