package http

import (
	"crypto/tls"
	"net/http/httptrace"
	"time"
)

// TimingInfo stores detailed timing information for a call.
// All durations represent the time spent in each phase of the exchange.
type TimingInfo struct {
	// DNSLookupTime is the time spent resolving the host
	DNSLookupTime time.Duration

	// TCPConnectTime is the time spent establishing the TCP connection
	TCPConnectTime time.Duration

	// TLSHandshakeTime is the time spent performing the TLS handshake (for HTTPS)
	TLSHandshakeTime time.Duration

	// TimeToFirstByte is the time from the end of the last connection phase
	// to receiving the first response byte
	TimeToFirstByte time.Duration

	// ContentTransferTime is the time spent reading the response body
	ContentTransferTime time.Duration

	// TotalTime is the total time from call start to completion
	TotalTime time.Duration
}

// clientTrace builds the httptrace hooks that fill in the phase timings and
// forward each written header field to sink. start anchors the first-byte
// measurement for calls that reuse no prior phase (no DNS, no TLS).
func (t *TimingInfo) clientTrace(start time.Time, sink func(key string, values []string)) *httptrace.ClientTrace {
	var dnsStart, connectStart, tlsStart time.Time
	lastPhaseEnd := start

	return &httptrace.ClientTrace{
		DNSStart: func(httptrace.DNSStartInfo) {
			dnsStart = time.Now()
		},
		DNSDone: func(httptrace.DNSDoneInfo) {
			now := time.Now()
			t.DNSLookupTime = now.Sub(dnsStart)
			lastPhaseEnd = now
		},
		ConnectStart: func(network, addr string) {
			connectStart = time.Now()
		},
		ConnectDone: func(network, addr string, err error) {
			if err != nil {
				return
			}
			now := time.Now()
			t.TCPConnectTime = now.Sub(connectStart)
			lastPhaseEnd = now
		},
		TLSHandshakeStart: func() {
			tlsStart = time.Now()
		},
		TLSHandshakeDone: func(state tls.ConnectionState, err error) {
			if err != nil {
				return
			}
			now := time.Now()
			t.TLSHandshakeTime = now.Sub(tlsStart)
			lastPhaseEnd = now
		},
		GotFirstResponseByte: func() {
			t.TimeToFirstByte = time.Since(lastPhaseEnd)
		},
		WroteHeaderField: func(key string, values []string) {
			sink(key, values)
		},
	}
}
