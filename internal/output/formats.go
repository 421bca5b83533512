package output

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/riposte/http"
)

// OutputFormat represents the available output formats
type OutputFormat string

const (
	// FormatText is the default human-readable text format
	FormatText OutputFormat = "text"
	// FormatJSON outputs in JSON format
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs in YAML format
	FormatYAML OutputFormat = "yaml"
)

// FormatProvider is an interface for different output formatters
type FormatProvider interface {
	FormatRequest(spec *http.RequestSpec) string
	FormatResult(result *http.CallResult) string
}

// RequestData represents the structured data of an outgoing request
type RequestData struct {
	Method    string            `json:"method" yaml:"method"`
	URL       string            `json:"url" yaml:"url"`
	Headers   map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body      interface{}       `json:"body,omitempty" yaml:"body,omitempty"`
	Timestamp string            `json:"timestamp" yaml:"timestamp"`
}

// TimingData represents per-phase timing in milliseconds
type TimingData struct {
	DNSLookup       int64 `json:"dnsLookupMs,omitempty" yaml:"dnsLookupMs,omitempty"`
	TCPConnection   int64 `json:"tcpConnectionMs,omitempty" yaml:"tcpConnectionMs,omitempty"`
	TLSHandshake    int64 `json:"tlsHandshakeMs,omitempty" yaml:"tlsHandshakeMs,omitempty"`
	TimeToFirstByte int64 `json:"timeToFirstByteMs,omitempty" yaml:"timeToFirstByteMs,omitempty"`
	ContentTransfer int64 `json:"contentTransferMs,omitempty" yaml:"contentTransferMs,omitempty"`
	Total           int64 `json:"totalMs" yaml:"totalMs"`
}

// ResponseData represents the structured data of a captured response
type ResponseData struct {
	StatusCode int               `json:"statusCode" yaml:"statusCode"`
	Status     string            `json:"status" yaml:"status"`
	Headers    map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body       interface{}       `json:"body,omitempty" yaml:"body,omitempty"`
}

// FailureData represents the structured data of a recorded failure
type FailureData struct {
	Kind    string `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
}

// ResultData represents a complete call capture. The request reflects the
// headers as transmitted; response and failure are each present only when
// recorded, and an error status carries both.
type ResultData struct {
	Request   RequestData   `json:"request" yaml:"request"`
	Response  *ResponseData `json:"response,omitempty" yaml:"response,omitempty"`
	Failure   *FailureData  `json:"failure,omitempty" yaml:"failure,omitempty"`
	Duration  int64         `json:"durationMs" yaml:"durationMs"`
	Timing    TimingData    `json:"timing" yaml:"timing"`
	StartedAt string        `json:"startedAt" yaml:"startedAt"`
	EndedAt   string        `json:"endedAt" yaml:"endedAt"`
}

// TestResult represents the result of a single test
type TestResult struct {
	Name       string            `json:"name" yaml:"name"`
	Passed     bool              `json:"passed" yaml:"passed"`
	Duration   int64             `json:"durationMs" yaml:"durationMs"`
	Assertions []AssertionResult `json:"assertions,omitempty" yaml:"assertions,omitempty"`
}

// AssertionResult represents the result of a single assertion
type AssertionResult struct {
	Type     string      `json:"type" yaml:"type"`
	Field    string      `json:"field,omitempty" yaml:"field,omitempty"`
	Expected interface{} `json:"expected,omitempty" yaml:"expected,omitempty"`
	Actual   interface{} `json:"actual,omitempty" yaml:"actual,omitempty"`
	Passed   bool        `json:"passed" yaml:"passed"`
	Message  string      `json:"message" yaml:"message"`
}

// TestSuiteResult represents the result of a test suite
type TestSuiteResult struct {
	Suite            string       `json:"suite" yaml:"suite"`
	TotalTests       int          `json:"totalTests" yaml:"totalTests"`
	PassedTests      int          `json:"passedTests" yaml:"passedTests"`
	FailedTests      int          `json:"failedTests" yaml:"failedTests"`
	TotalAssertions  int          `json:"totalAssertions" yaml:"totalAssertions"`
	PassedAssertions int          `json:"passedAssertions" yaml:"passedAssertions"`
	FailedAssertions int          `json:"failedAssertions" yaml:"failedAssertions"`
	Duration         int64        `json:"durationMs" yaml:"durationMs"`
	Tests            []TestResult `json:"tests" yaml:"tests"`
	Timestamp        string       `json:"timestamp" yaml:"timestamp"`
}

// requestData builds the serializable view of a request spec
func requestData(spec *http.RequestSpec) RequestData {
	var body interface{}
	if spec.Body != "" {
		if err := json.Unmarshal([]byte(spec.Body), &body); err != nil {
			body = spec.Body
		}
	}

	return RequestData{
		Method:    spec.Method,
		URL:       spec.URL,
		Headers:   spec.Headers,
		Body:      body,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// resultData builds the serializable view of a completed call
func resultData(result *http.CallResult) ResultData {
	data := ResultData{
		Duration: result.DurationMillis(),
		Timing: TimingData{
			DNSLookup:       result.Timing.DNSLookupTime.Milliseconds(),
			TCPConnection:   result.Timing.TCPConnectTime.Milliseconds(),
			TLSHandshake:    result.Timing.TLSHandshakeTime.Milliseconds(),
			TimeToFirstByte: result.Timing.TimeToFirstByte.Milliseconds(),
			ContentTransfer: result.Timing.ContentTransferTime.Milliseconds(),
			Total:           result.Timing.TotalTime.Milliseconds(),
		},
		StartedAt: result.StartedAt.Format(time.RFC3339Nano),
		EndedAt:   result.EndedAt.Format(time.RFC3339Nano),
	}

	if result.Request != nil {
		data.Request = requestData(result.Request)
	}

	if result.Response != nil {
		var body interface{}
		if result.Response.Body != "" {
			if err := json.Unmarshal([]byte(result.Response.Body), &body); err != nil {
				body = result.Response.Body
			}
		}
		data.Response = &ResponseData{
			StatusCode: result.Response.StatusCode,
			Status:     result.Response.Status,
			Headers:    result.Response.Headers,
			Body:       body,
		}
	}

	if result.Failure != nil {
		data.Failure = &FailureData{
			Kind:    string(result.Failure.Kind),
			Message: result.Failure.Message,
		}
	}

	return data
}

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Verbose     bool
	Pretty      bool
	TestResults *TestSuiteResult // Store test results for final output
	CurrentTest *TestResult      // Current test being executed
}

// FormatRequest formats a request as JSON
func (f *JSONFormatter) FormatRequest(spec *http.RequestSpec) string {
	return f.marshal(requestData(spec))
}

// FormatResult formats a completed call as JSON
func (f *JSONFormatter) FormatResult(result *http.CallResult) string {
	return f.marshal(resultData(result))
}

func (f *JSONFormatter) marshal(v interface{}) string {
	var output []byte
	var err error
	if f.Pretty {
		output, err = json.MarshalIndent(v, "", "  ")
	} else {
		output, err = json.Marshal(v)
	}

	if err != nil {
		return fmt.Sprintf(`{"error":"Failed to marshal output: %s"}`, err)
	}

	return string(output)
}

// StartTest initializes a new test in the JSONFormatter
func (f *JSONFormatter) StartTest(name string) {
	if f.TestResults == nil {
		f.TestResults = &TestSuiteResult{
			Tests:     []TestResult{},
			Timestamp: time.Now().Format(time.RFC3339),
		}
	}
	f.CurrentTest = &TestResult{
		Name:       name,
		Assertions: []AssertionResult{},
	}
}

// AddAssertion adds an assertion result to the current test
func (f *JSONFormatter) AddAssertion(assertion AssertionResult) {
	if f.CurrentTest != nil {
		f.CurrentTest.Assertions = append(f.CurrentTest.Assertions, assertion)
	}
}

// EndTest finalizes the current test and adds it to the suite results
func (f *JSONFormatter) EndTest(passed bool, duration int64) {
	if f.CurrentTest != nil {
		f.CurrentTest.Passed = passed
		f.CurrentTest.Duration = duration
		if f.TestResults != nil {
			f.TestResults.Tests = append(f.TestResults.Tests, *f.CurrentTest)
		}
		f.CurrentTest = nil
	}
}

// GetTestSuiteJSON returns the complete test suite results as JSON
func (f *JSONFormatter) GetTestSuiteJSON() string {
	if f.TestResults == nil {
		return "{}"
	}

	return f.marshal(f.TestResults)
}

// YAMLFormatter formats output as YAML
type YAMLFormatter struct {
	Verbose     bool
	TestResults *TestSuiteResult // Store test results for final output
	CurrentTest *TestResult      // Current test being executed
}

// FormatRequest formats a request as YAML
func (f *YAMLFormatter) FormatRequest(spec *http.RequestSpec) string {
	output, err := yaml.Marshal(requestData(spec))
	if err != nil {
		return fmt.Sprintf("error: Failed to marshal request: %s", err)
	}

	return string(output)
}

// FormatResult formats a completed call as YAML
func (f *YAMLFormatter) FormatResult(result *http.CallResult) string {
	output, err := yaml.Marshal(resultData(result))
	if err != nil {
		return fmt.Sprintf("error: Failed to marshal result: %s", err)
	}

	return string(output)
}

// StartTest initializes a new test in the YAMLFormatter
func (f *YAMLFormatter) StartTest(name string) {
	if f.TestResults == nil {
		f.TestResults = &TestSuiteResult{
			Tests:     []TestResult{},
			Timestamp: time.Now().Format(time.RFC3339),
		}
	}
	f.CurrentTest = &TestResult{
		Name:       name,
		Assertions: []AssertionResult{},
	}
}

// AddAssertion adds an assertion result to the current test
func (f *YAMLFormatter) AddAssertion(assertion AssertionResult) {
	if f.CurrentTest != nil {
		f.CurrentTest.Assertions = append(f.CurrentTest.Assertions, assertion)
	}
}

// EndTest finalizes the current test and adds it to the suite results
func (f *YAMLFormatter) EndTest(passed bool, duration int64) {
	if f.CurrentTest != nil {
		f.CurrentTest.Passed = passed
		f.CurrentTest.Duration = duration
		if f.TestResults != nil {
			f.TestResults.Tests = append(f.TestResults.Tests, *f.CurrentTest)
		}
		f.CurrentTest = nil
	}
}

// GetTestSuiteYAML returns the complete test suite results as YAML
func (f *YAMLFormatter) GetTestSuiteYAML() string {
	if f.TestResults == nil {
		return "---\n{}\n"
	}

	output, err := yaml.Marshal(f.TestResults)
	if err != nil {
		return fmt.Sprintf("---\nerror: Failed to marshal test results: %s\n", err)
	}

	return "---\n" + string(output)
}

// GetFormatter returns the appropriate formatter for the given format
func GetFormatter(format OutputFormat, verbose bool, noColor bool) FormatProvider {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Verbose: verbose, Pretty: !noColor}
	case FormatYAML:
		return &YAMLFormatter{Verbose: verbose}
	default:
		// Default to text formatter
		return &Formatter{Verbose: verbose, NoColor: noColor}
	}
}
