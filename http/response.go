package http

import (
	"encoding/json"
	"net/http"
	"net/textproto"
)

// ResponseCapture records what came back from the server: status, headers
// and the body decoded as UTF-8 text. It is populated from a successful
// exchange or from an error response that still carried a body.
type ResponseCapture struct {
	// StatusCode is the HTTP status code (e.g. 200, 404, 500)
	StatusCode int

	// Status is the HTTP status line (e.g. "200 OK")
	Status string

	// Headers keeps one value per header name; when the transport surfaces
	// duplicate instances of a header they collapse to the last value.
	Headers map[string]string

	// Body is the response body as UTF-8 text.
	Body string
}

// captureResponse flattens a net/http response into a ResponseCapture.
func captureResponse(resp *http.Response, body []byte) *ResponseCapture {
	headers := make(map[string]string, len(resp.Header))
	for key, values := range resp.Header {
		if len(values) > 0 {
			headers[key] = values[len(values)-1]
		}
	}

	return &ResponseCapture{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Headers:    headers,
		Body:       string(body),
	}
}

// Header returns the value recorded for the given header name, trying the
// exact spelling first and the canonical form second. Returns an empty
// string if the header is not present.
func (r *ResponseCapture) Header(name string) string {
	if value, ok := r.Headers[name]; ok {
		return value
	}
	return r.Headers[textproto.CanonicalMIMEHeaderKey(name)]
}

// DecodeJSON unmarshals the captured body into v. Decode failures are
// swallowed rather than propagated: the return value reports whether the
// body was fully decoded into v.
func (r *ResponseCapture) DecodeJSON(v interface{}) bool {
	if r == nil || r.Body == "" {
		return false
	}
	return json.Unmarshal([]byte(r.Body), v) == nil
}

// IsSuccess returns true if the status code is in the 2xx range.
func (r *ResponseCapture) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsRedirect returns true if the status code is in the 3xx range.
func (r *ResponseCapture) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400
}

// IsClientError returns true if the status code is in the 4xx range.
func (r *ResponseCapture) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

// IsServerError returns true if the status code is in the 5xx range.
func (r *ResponseCapture) IsServerError() bool {
	return r.StatusCode >= 500 && r.StatusCode < 600
}

// IsError returns true if the status code indicates an error (4xx or 5xx).
func (r *ResponseCapture) IsError() bool {
	return r.IsClientError() || r.IsServerError()
}
