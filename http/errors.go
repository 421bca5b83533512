package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
)

// FailureKind classifies why a call did not fully succeed.
type FailureKind string

const (
	// FailureSerialization means the request body could not be serialized;
	// the call was never sent.
	FailureSerialization FailureKind = "serialization_error"

	// FailureHTTPStatus means the server answered with an error status;
	// the response is captured alongside the failure.
	FailureHTTPStatus FailureKind = "http_status_error"

	// FailureTransport means no usable response was received: DNS lookup,
	// connection, TLS handshake or timeout failures.
	FailureTransport FailureKind = "transport_error"

	// FailureUnknown covers any other condition during the call lifecycle,
	// such as an unparsable URL or an invalid method.
	FailureUnknown FailureKind = "unknown_error"
)

// Failure describes a captured call failure. It lives on the CallResult
// instead of being returned as an error, so callers inspect a field rather
// than unwinding a call stack.
type Failure struct {
	// Kind tags the failure for programmatic branching.
	Kind FailureKind

	// Message is the human-readable description.
	Message string

	// Err is the underlying error, when one exists. HTTP status failures
	// carry no underlying error.
	Err error
}

// Error implements the error interface for callers that want to log or wrap
// a Failure as a plain error.
func (f *Failure) Error() string {
	return string(f.Kind) + ": " + f.Message
}

// Unwrap exposes the underlying error for errors.Is/As chains.
func (f *Failure) Unwrap() error {
	return f.Err
}

func newFailure(kind FailureKind, err error) *Failure {
	return &Failure{Kind: kind, Message: err.Error(), Err: err}
}

// statusFailure records an HTTP error status. The response itself is
// captured separately; this tags the result as failed.
func statusFailure(resp *http.Response) *Failure {
	return &Failure{
		Kind:    FailureHTTPStatus,
		Message: "server returned " + resp.Status,
	}
}

// classifyFailure maps an error surfaced while performing the exchange to a
// failure kind. Everything the standard client produces during the network
// round trip arrives wrapped in *url.Error, and mid-body stream errors
// satisfy net.Error; both classify as transport failures. Anything that
// matches neither is unknown.
func classifyFailure(err error) *Failure {
	kind := FailureUnknown

	var urlErr *url.Error
	var netErr net.Error
	switch {
	case errors.As(err, &urlErr):
		kind = FailureTransport
	case errors.As(err, &netErr):
		kind = FailureTransport
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		kind = FailureTransport
	}

	return newFailure(kind, err)
}
