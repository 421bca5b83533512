package http

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"time"
)

// Client issues HTTP requests from an immutable base configuration: base URL,
// default headers, optional basic-auth pair and optional client certificate.
// Configuration is fixed at construction; a Client may be used concurrently.
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    map[string]string
	auth       *BasicAuth
	cert       *tls.Certificate
	timeout    time.Duration
}

// BasicAuth is a username/password pair for HTTP Basic authentication.
// The Authorization header is only computed when both fields are non-blank.
type BasicAuth struct {
	Username string
	Password string
}

// ClientOption is a function that configures a Client
type ClientOption func(*Client)

// NewClient creates a new client with the given options. The underlying
// transport is built once: keep-alives are disabled so every call opens and
// fully closes its own connection, and TLS 1.2 is the minimum protocol
// version for all calls.
func NewClient(options ...ClientOption) *Client {
	client := &Client{
		headers: make(map[string]string),
		timeout: 30 * time.Second,
	}

	for _, option := range options {
		option(client)
	}

	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}
	if client.cert != nil {
		tlsConfig.Certificates = []tls.Certificate{*client.cert}
	}

	client.httpClient = &http.Client{
		Timeout: client.timeout,
		Transport: &http.Transport{
			DisableKeepAlives: true,
			TLSClientConfig:   tlsConfig,
		},
	}

	return client
}

// WithBaseURL sets the base URL prepended to every call's path.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTimeout sets the network timeout applied to every call.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHeader adds a default header sent with every call.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// WithHeaders adds a set of default headers sent with every call.
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		for key, value := range headers {
			c.headers[key] = value
		}
	}
}

// WithBasicAuth sets the basic-auth pair attached to every call.
func WithBasicAuth(username, password string) ClientOption {
	return func(c *Client) {
		c.auth = &BasicAuth{Username: username, Password: password}
	}
}

// WithClientCertificate sets the client certificate presented during the
// TLS handshake (mutual TLS).
func WithClientCertificate(cert tls.Certificate) ClientOption {
	return func(c *Client) {
		c.cert = &cert
	}
}

// Execute performs a single HTTP call and returns its CallResult. It never
// returns an error and never panics on a failed call: serialization
// problems, transport failures and HTTP error statuses are all captured on
// the result, and start/end/duration are populated on every path.
func (c *Client) Execute(ctx context.Context, method, path string, body interface{}, headers map[string]string) *CallResult {
	if ctx == nil {
		ctx = context.Background()
	}

	result := &CallResult{StartedAt: time.Now()}
	spec := c.newRequestSpec(method, path, headers)
	result.Request = spec

	payload, err := encodeBody(body)
	if err != nil {
		result.Failure = newFailure(FailureSerialization, fmt.Errorf("serializing request body: %w", err))
		return result.finish()
	}
	if payload != "" {
		spec.Body = payload
		if _, ok := spec.Headers[headerContentType]; !ok {
			spec.Headers[headerContentType] = contentTypeJSON
		}
	}

	req, err := spec.buildHTTPRequest(ctx)
	if err != nil {
		result.Failure = newFailure(FailureUnknown, err)
		return result.finish()
	}

	// One trace serves two purposes: per-phase timing, and capturing the
	// header fields the transport actually wrote so the RequestSpec records
	// what went over the wire, not just what was asked for.
	wrote := newWroteHeaderSet()
	trace := result.Timing.clientTrace(result.StartedAt, wrote.record)
	req = req.WithContext(httptrace.WithClientTrace(ctx, trace))

	resp, err := c.httpClient.Do(req)
	wrote.mergeInto(spec.Headers)
	if err != nil {
		result.Failure = classifyFailure(err)
		return result.finish()
	}
	defer resp.Body.Close()

	transferStart := time.Now()
	bodyBytes, readErr := io.ReadAll(resp.Body)
	result.Timing.ContentTransferTime = time.Since(transferStart)

	result.Response = captureResponse(resp, bodyBytes)
	switch {
	case readErr != nil:
		result.Failure = newFailure(FailureTransport, fmt.Errorf("reading response body: %w", readErr))
	case resp.StatusCode >= 400:
		result.Failure = statusFailure(resp)
	}

	return result.finish()
}

// Get issues a GET request for path.
func (c *Client) Get(ctx context.Context, path string, headers map[string]string) *CallResult {
	return c.Execute(ctx, http.MethodGet, path, nil, headers)
}

// Post issues a POST request for path with the given body.
func (c *Client) Post(ctx context.Context, path string, body interface{}, headers map[string]string) *CallResult {
	return c.Execute(ctx, http.MethodPost, path, body, headers)
}

// Put issues a PUT request for path with the given body.
func (c *Client) Put(ctx context.Context, path string, body interface{}, headers map[string]string) *CallResult {
	return c.Execute(ctx, http.MethodPut, path, body, headers)
}

// Delete issues a DELETE request for path.
func (c *Client) Delete(ctx context.Context, path string, headers map[string]string) *CallResult {
	return c.Execute(ctx, http.MethodDelete, path, nil, headers)
}

// Head issues a HEAD request for path.
func (c *Client) Head(ctx context.Context, path string, headers map[string]string) *CallResult {
	return c.Execute(ctx, http.MethodHead, path, nil, headers)
}
