// Package http issues single HTTP requests from a fixed base configuration
// and captures every outcome (response, transport failure, or both) in one
// uniform CallResult shape, so callers never branch on errors.
//
// A Client is configured once with functional options and is then safe to
// share between goroutines:
//
//	client := http.NewClient(
//	    http.WithBaseURL("https://api.example.com"),
//	    http.WithHeader("Accept", "application/json"),
//	    http.WithBasicAuth("user", "pass"),
//	    http.WithTimeout(10*time.Second),
//	)
//
// Every call returns a *CallResult; Execute never returns an error:
//
//	result := client.Get(context.Background(), "/widgets/1", nil)
//	if result.Failure != nil {
//	    fmt.Printf("call failed (%s): %s\n", result.Failure.Kind, result.Failure.Message)
//	}
//	if result.Response != nil {
//	    fmt.Printf("status %d in %dms\n", result.Response.StatusCode, result.DurationMillis())
//	}
//
// Note that Failure and Response are not mutually exclusive: an HTTP error
// status produces a CallResult carrying both the captured response (status,
// headers, body) and a Failure of kind FailureHTTPStatus.
//
// The CallResult also records the request as it was actually transmitted:
// merged headers, the computed Authorization value, and the header fields the
// transport itself wrote (Host, User-Agent, Content-Length, ...), plus
// per-phase timing (DNS, TCP connect, TLS handshake, TTFB, content transfer).
//
// Each call opens and closes its own connection; keep-alives are disabled and
// TLS 1.2 is the fixed minimum protocol version.
package http
