// Package stats accumulates latency and outcome statistics across repeated
// calls. Latencies are recorded in an HDR histogram at microsecond
// resolution, covering 1 microsecond to 1 hour at 3 significant figures.
package stats

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/wesleyorama2/riposte/http"
)

const (
	histogramMin     = 1
	histogramMax     = 3600000000 // 1 hour in microseconds
	histogramSigFigs = 3
)

// Summary collects the outcomes of a sequence of calls. It is not safe for
// concurrent use; calls are recorded one at a time.
type Summary struct {
	hist     *hdrhistogram.Histogram
	total    int
	failed   int
	statuses map[int]int
	failures map[http.FailureKind]int
}

// NewSummary creates an empty summary.
func NewSummary() *Summary {
	return &Summary{
		hist:     hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs),
		statuses: make(map[int]int),
		failures: make(map[http.FailureKind]int),
	}
}

// Record adds one call result to the summary.
func (s *Summary) Record(result *http.CallResult) {
	s.total++

	latencyMicros := result.Duration.Microseconds()
	if latencyMicros < histogramMin {
		latencyMicros = histogramMin
	}
	if latencyMicros > histogramMax {
		latencyMicros = histogramMax
	}
	s.hist.RecordValue(latencyMicros)

	if result.Response != nil {
		s.statuses[result.Response.StatusCode]++
	}
	if result.Failure != nil {
		s.failed++
		s.failures[result.Failure.Kind]++
	}
}

// Total returns the number of recorded calls.
func (s *Summary) Total() int {
	return s.total
}

// Succeeded returns the number of calls that completed without a failure.
func (s *Summary) Succeeded() int {
	return s.total - s.failed
}

// Failed returns the number of calls that recorded a failure.
func (s *Summary) Failed() int {
	return s.failed
}

// Percentile returns the latency at the given quantile (0-100).
func (s *Summary) Percentile(q float64) time.Duration {
	return time.Duration(s.hist.ValueAtQuantile(q)) * time.Microsecond
}

// Mean returns the mean latency.
func (s *Summary) Mean() time.Duration {
	return time.Duration(s.hist.Mean()) * time.Microsecond
}

// Min returns the lowest recorded latency.
func (s *Summary) Min() time.Duration {
	return time.Duration(s.hist.Min()) * time.Microsecond
}

// Max returns the highest recorded latency.
func (s *Summary) Max() time.Duration {
	return time.Duration(s.hist.Max()) * time.Microsecond
}

// StatusCounts returns how many times each status code was seen.
func (s *Summary) StatusCounts() map[int]int {
	return s.statuses
}

// FailureCounts returns how many times each failure kind was recorded.
func (s *Summary) FailureCounts() map[http.FailureKind]int {
	return s.failures
}

// Render produces a human-readable block summarizing the recorded calls.
func (s *Summary) Render() string {
	var buf strings.Builder

	buf.WriteString("SUMMARY\n")
	buf.WriteString(fmt.Sprintf("  Requests:    %d (%d ok, %d failed)\n", s.total, s.Succeeded(), s.failed))

	if s.total > 0 {
		buf.WriteString(fmt.Sprintf("  Latency:     min %s / mean %s / max %s\n",
			formatDuration(s.Min()), formatDuration(s.Mean()), formatDuration(s.Max())))
		buf.WriteString(fmt.Sprintf("  Percentiles: p50 %s / p90 %s / p95 %s / p99 %s\n",
			formatDuration(s.Percentile(50)),
			formatDuration(s.Percentile(90)),
			formatDuration(s.Percentile(95)),
			formatDuration(s.Percentile(99))))
	}

	if len(s.statuses) > 0 {
		codes := make([]int, 0, len(s.statuses))
		for code := range s.statuses {
			codes = append(codes, code)
		}
		sort.Ints(codes)

		parts := make([]string, 0, len(codes))
		for _, code := range codes {
			parts = append(parts, fmt.Sprintf("%d x%d", code, s.statuses[code]))
		}
		buf.WriteString(fmt.Sprintf("  Status:      %s\n", strings.Join(parts, ", ")))
	}

	if len(s.failures) > 0 {
		kinds := make([]string, 0, len(s.failures))
		for kind := range s.failures {
			kinds = append(kinds, string(kind))
		}
		sort.Strings(kinds)

		parts := make([]string, 0, len(kinds))
		for _, kind := range kinds {
			parts = append(parts, fmt.Sprintf("%s x%d", kind, s.failures[http.FailureKind(kind)]))
		}
		buf.WriteString(fmt.Sprintf("  Failures:    %s\n", strings.Join(parts, ", ")))
	}

	return buf.String()
}

// formatDuration renders a latency with millisecond precision for readable
// summaries.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
