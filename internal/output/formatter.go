package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/wesleyorama2/riposte/http"
)

// Formatter renders calls in the default human-readable text format
type Formatter struct {
	Verbose bool
	NoColor bool
}

// NewFormatter creates a new formatter with the given options
func NewFormatter(verbose, noColor bool) *Formatter {
	return &Formatter{
		Verbose: verbose,
		NoColor: noColor,
	}
}

// NewFormatterWithFormat creates a new formatter with the specified output format
func NewFormatterWithFormat(format OutputFormat, verbose, noColor bool) FormatProvider {
	return GetFormatter(format, verbose, noColor)
}

// FormatRequest formats the outgoing request for display
func (f *Formatter) FormatRequest(spec *http.RequestSpec) string {
	var buf strings.Builder

	methodColor := color.New(color.FgBlue, color.Bold)
	if f.NoColor {
		methodColor.DisableColor()
	}

	buf.WriteString(fmt.Sprintf("▶ REQUEST: %s %s\n", methodColor.Sprint(spec.Method), spec.URL))

	if f.Verbose || len(spec.Headers) > 0 {
		buf.WriteString("  Headers:\n")
		for key, value := range spec.Headers {
			buf.WriteString(fmt.Sprintf("    %s: %s\n", key, value))
		}
	}

	if spec.Body != "" {
		buf.WriteString("  Body: ")
		buf.WriteString(formatJSONString(spec.Body))
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatResult formats the outcome of a call: the captured response when one
// arrived, and the failure when one was recorded. An error status renders
// both.
func (f *Formatter) FormatResult(result *http.CallResult) string {
	var buf strings.Builder

	if result.Response != nil {
		buf.WriteString(f.formatResponse(result))
	}
	if result.Failure != nil {
		buf.WriteString(fmt.Sprintf("%s FAILURE: %s\n", ErrorIcon(f.NoColor), result.Failure.Error()))
	}

	return buf.String()
}

func (f *Formatter) formatResponse(result *http.CallResult) string {
	var buf strings.Builder
	resp := result.Response

	// Format status
	statusColor := color.New(color.Bold)
	if resp.IsSuccess() {
		statusColor.Add(color.FgGreen)
	} else if resp.IsRedirect() {
		statusColor.Add(color.FgYellow)
	} else {
		statusColor.Add(color.FgRed)
	}

	if f.NoColor {
		statusColor.DisableColor()
	}

	buf.WriteString(fmt.Sprintf("◀ RESPONSE: %s (%dms)\n",
		statusColor.Sprint(resp.Status),
		result.DurationMillis()))

	// Format detailed timing information if verbose
	if f.Verbose {
		timing := result.Timing
		buf.WriteString("  Timing:\n")
		buf.WriteString(fmt.Sprintf("    DNS Lookup:      %dms\n", timing.DNSLookupTime.Milliseconds()))
		buf.WriteString(fmt.Sprintf("    TCP Connection:  %dms\n", timing.TCPConnectTime.Milliseconds()))
		buf.WriteString(fmt.Sprintf("    TLS Handshake:   %dms\n", timing.TLSHandshakeTime.Milliseconds()))
		buf.WriteString(fmt.Sprintf("    Time to First Byte: %dms\n", timing.TimeToFirstByte.Milliseconds()))
		buf.WriteString(fmt.Sprintf("    Content Transfer:  %dms\n", timing.ContentTransferTime.Milliseconds()))
		buf.WriteString(fmt.Sprintf("    Total:           %dms\n", timing.TotalTime.Milliseconds()))
	}

	// Format headers if verbose
	if f.Verbose {
		buf.WriteString("  Headers:\n")
		for key, value := range resp.Headers {
			buf.WriteString(fmt.Sprintf("    %s: %s\n", key, value))
		}
	}

	// Format body
	if resp.Body != "" {
		buf.WriteString("  Body:\n")
		buf.WriteString(formatJSONString(resp.Body))
		buf.WriteString("\n")
	}

	return buf.String()
}

// formatJSONString attempts to pretty-print a JSON string
func formatJSONString(s string) string {
	var prettyJSON bytes.Buffer
	err := json.Indent(&prettyJSON, []byte(s), "  ", "  ")
	if err != nil {
		return s
	}
	return prettyJSON.String()
}
