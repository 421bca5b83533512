package cli

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/riposte/http"
	"github.com/wesleyorama2/riposte/internal/history"
	"github.com/wesleyorama2/riposte/internal/logging"
	"github.com/wesleyorama2/riposte/internal/output"
	"github.com/wesleyorama2/riposte/internal/stats"
)

// callSettings collects the flag values shared by every verb command.
type callSettings struct {
	headers   []string
	user      string
	certFile  string
	keyFile   string
	timeout   time.Duration
	verbose   bool
	noColor   bool
	format    string
	repeat    int
	noHistory bool
}

// addCallFlags registers the flag set every verb command shares.
func addCallFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayP("header", "H", []string{}, "HTTP headers to include (can be used multiple times)")
	cmd.Flags().StringP("user", "u", "", "Basic auth credentials as user:password")
	cmd.Flags().String("cert", "", "Client certificate file for mutual TLS")
	cmd.Flags().String("key", "", "Client certificate key file for mutual TLS")
	cmd.Flags().DurationP("timeout", "t", 30*time.Second, "Request timeout")
	cmd.Flags().BoolP("verbose", "v", false, "Enable verbose output")
	cmd.Flags().Bool("no-color", false, "Disable colored output")
	cmd.Flags().StringP("output", "o", "text", "Output format: text, json or yaml")
	cmd.Flags().IntP("repeat", "n", 1, "Number of times to repeat the call")
	cmd.Flags().Bool("no-history", false, "Do not record the call in history")
}

// settingsFromFlags reads the shared flag values back out of a command.
func settingsFromFlags(cmd *cobra.Command) callSettings {
	headers, _ := cmd.Flags().GetStringArray("header")
	user, _ := cmd.Flags().GetString("user")
	certFile, _ := cmd.Flags().GetString("cert")
	keyFile, _ := cmd.Flags().GetString("key")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	verbose, _ := cmd.Flags().GetBool("verbose")
	noColor, _ := cmd.Flags().GetBool("no-color")
	format, _ := cmd.Flags().GetString("output")
	repeat, _ := cmd.Flags().GetInt("repeat")
	noHistory, _ := cmd.Flags().GetBool("no-history")

	return callSettings{
		headers:   headers,
		user:      user,
		certFile:  certFile,
		keyFile:   keyFile,
		timeout:   timeout,
		verbose:   verbose,
		noColor:   resolveNoColor(noColor),
		format:    format,
		repeat:    repeat,
		noHistory: noHistory,
	}
}

// resolveNoColor disables color when asked to, or when stdout is not a
// terminal.
func resolveNoColor(flag bool) bool {
	return flag || !output.IsTerminal(os.Stdout)
}

// headerMap parses repeated "Name: value" flag values into a header map.
func headerMap(headers []string) map[string]string {
	m := make(map[string]string, len(headers))
	for _, header := range headers {
		parts := strings.SplitN(header, ":", 2)
		if len(parts) == 2 {
			m[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return m
}

// buildClient assembles a client from the base URL and the shared flags.
func buildClient(baseURL string, s callSettings) (*http.Client, error) {
	options := []http.ClientOption{
		http.WithBaseURL(baseURL),
		http.WithTimeout(s.timeout),
	}

	if s.user != "" {
		parts := strings.SplitN(s.user, ":", 2)
		password := ""
		if len(parts) == 2 {
			password = parts[1]
		}
		options = append(options, http.WithBasicAuth(parts[0], password))
	}

	if s.certFile != "" || s.keyFile != "" {
		cert, err := tls.LoadX509KeyPair(s.certFile, s.keyFile)
		if err != nil {
			return nil, fmt.Errorf("loading client certificate: %w", err)
		}
		options = append(options, http.WithClientCertificate(cert))
	}

	return http.NewClient(options...), nil
}

// executeCall carries a verb command end to end: build the client, run the
// call as many times as asked, print each capture, record history, and
// render a latency summary for repeated calls. The returned exit code is 1
// when any call finished without ever receiving a response.
func executeCall(method, rawURL string, body interface{}, s callSettings) int {
	baseURL, path := parseURL(rawURL)

	client, err := buildClient(baseURL, s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	formatter := output.NewFormatterWithFormat(output.OutputFormat(s.format), s.verbose, s.noColor)
	textMode := s.format == "" || s.format == string(output.FormatText)
	log := logging.Logger()

	var store *history.Manager
	if !s.noHistory {
		store = openHistory(log)
		if store != nil {
			defer store.Close()
		}
	}

	headers := headerMap(s.headers)
	summary := stats.NewSummary()
	exitCode := 0

	for i := 0; i < s.repeat; i++ {
		callID := uuid.NewString()

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		result := client.Execute(ctx, method, path, body, headers)
		cancel()

		// The text formatter prints the request and result as separate
		// sections; the structured formats carry the request inside the
		// result document, so printing both would duplicate it.
		if textMode {
			fmt.Print(formatter.FormatRequest(result.Request))
		}
		fmt.Print(formatter.FormatResult(result))

		summary.Record(result)
		if result.Response == nil && result.Failure != nil {
			exitCode = 1
		}

		event := log.Debug().
			Str("call_id", callID).
			Str("method", result.Request.Method).
			Str("url", result.Request.URL).
			Int64("duration_ms", result.DurationMillis())
		if result.Response != nil {
			event = event.Int("status", result.Response.StatusCode)
		}
		if result.Failure != nil {
			event = event.Str("failure", string(result.Failure.Kind))
		}
		event.Msg("call finished")

		if store != nil {
			if err := store.Save(callID, result); err != nil {
				log.Warn().Err(err).Msg("could not record call in history")
			}
		}
	}

	if s.repeat > 1 {
		fmt.Println()
		fmt.Print(summary.Render())
	}

	return exitCode
}

// openHistory opens the default history store. History is best-effort: any
// problem opening it downgrades to running without history, never to a
// failed call.
func openHistory(log zerolog.Logger) *history.Manager {
	path, err := history.DefaultPath()
	if err != nil {
		log.Warn().Err(err).Msg("history disabled")
		return nil
	}

	store, err := history.NewManager(path)
	if err != nil {
		log.Warn().Err(err).Msg("history disabled")
		return nil
	}
	return store
}
