package http

import (
	"time"
)

// CallResult is the uniform outcome of a single call. It is returned for
// every call regardless of what happened: timing is always populated, the
// request record is always present once built, and Response and Failure are
// independently settable. An HTTP error status yields both.
type CallResult struct {
	// StartedAt is when the call began.
	StartedAt time.Time

	// EndedAt is when the call finished, on every path taken.
	EndedAt time.Time

	// Duration is EndedAt minus StartedAt.
	Duration time.Duration

	// Request records the request as actually sent.
	Request *RequestSpec

	// Response is the captured response; nil when none was ever received.
	Response *ResponseCapture

	// Failure is the captured failure; nil when the call fully succeeded.
	Failure *Failure

	// Timing breaks the call down into transport phases.
	Timing TimingInfo
}

// finish stamps the end of the call and derives Duration. Called exactly
// once, on every exit path of Execute.
func (r *CallResult) finish() *CallResult {
	r.EndedAt = time.Now()
	r.Duration = r.EndedAt.Sub(r.StartedAt)
	r.Timing.TotalTime = r.Duration
	return r
}

// IsSuccess reports whether a response arrived and no failure was recorded.
func (r *CallResult) IsSuccess() bool {
	return r.Failure == nil && r.Response != nil
}

// DurationMillis returns the call duration in milliseconds.
func (r *CallResult) DurationMillis() int64 {
	return r.Duration.Milliseconds()
}
