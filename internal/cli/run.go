package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/riposte/config"
	"github.com/wesleyorama2/riposte/http"
	"github.com/wesleyorama2/riposte/internal/history"
	"github.com/wesleyorama2/riposte/internal/logging"
	"github.com/wesleyorama2/riposte/internal/output"
	"github.com/wesleyorama2/riposte/pkg/jsonpath"
	"github.com/wesleyorama2/riposte/pkg/jsonschema"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run requests or suites from a configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		configFile, _ := cmd.Flags().GetString("config")
		environment, _ := cmd.Flags().GetString("environment")
		request, _ := cmd.Flags().GetString("request")
		suite, _ := cmd.Flags().GetString("suite")
		verbose, _ := cmd.Flags().GetBool("verbose")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		noColor, _ := cmd.Flags().GetBool("no-color")
		noHistory, _ := cmd.Flags().GetBool("no-history")
		noColor = resolveNoColor(noColor)

		if configFile == "" {
			fmt.Println("Error: config file is required")
			cmd.Help()
			return
		}

		if environment == "" {
			fmt.Println("Error: environment is required")
			cmd.Help()
			return
		}

		if request == "" && suite == "" {
			fmt.Println("Error: either request or suite is required")
			cmd.Help()
			return
		}

		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		if errors := config.ValidateConfig(cfg); len(errors) > 0 {
			fmt.Fprintln(os.Stderr, "Configuration validation errors:")
			for _, err := range errors {
				fmt.Fprintf(os.Stderr, "  - %s\n", err.Error())
			}
			os.Exit(1)
		}

		if err := config.ValidateEnvironment(cfg, environment); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		r := newRunner(cfg, cfg.Environments[environment], timeout, verbose, output.NewFormatter(verbose, noColor))
		if !noHistory {
			r.store = openHistory(logging.Logger())
			if r.store != nil {
				defer r.store.Close()
			}
		}

		ctx := context.Background()

		if request != "" {
			if err := config.ValidateRequest(cfg, request); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}

			result, err := r.executeRequest(ctx, request)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			if result.Response == nil && result.Failure != nil {
				os.Exit(1)
			}
			return
		}

		if err := config.ValidateSuite(cfg, suite); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if err := r.executeSuite(ctx, suite); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// runner executes configured requests against one environment, carrying
// extracted variables forward from call to call.
type runner struct {
	cfg       *config.Config
	env       config.Environment
	vars      map[string]string
	timeout   time.Duration
	verbose   bool
	formatter *output.Formatter
	store     *history.Manager

	// print controls whether captures are written to stdout; the test
	// command renders its own indented view instead.
	print bool
}

// newRunner copies the environment's variables so extraction never mutates
// the loaded configuration.
func newRunner(cfg *config.Config, env config.Environment, timeout time.Duration, verbose bool, formatter *output.Formatter) *runner {
	vars := make(map[string]string, len(env.Vars))
	for key, value := range env.Vars {
		vars[key] = value
	}

	return &runner{
		cfg:       cfg,
		env:       env,
		vars:      vars,
		timeout:   timeout,
		verbose:   verbose,
		formatter: formatter,
		print:     true,
	}
}

// executeRequest runs one configured request and returns its capture.
// Pre-flight problems (unknown request, unloadable certificate) are errors;
// anything that happened on the wire is recorded on the result instead.
func (r *runner) executeRequest(ctx context.Context, name string) (*http.CallResult, error) {
	reqConfig, ok := r.cfg.Requests[name]
	if !ok {
		return nil, fmt.Errorf("request not found: %s", name)
	}

	baseURL, path := parseURL(r.resolveURL(reqConfig.URL))

	client, err := r.clientFor(baseURL)
	if err != nil {
		return nil, err
	}

	path = appendQueryParams(path, config.ProcessEnvironmentInMap(reqConfig.QueryParams, r.vars))
	headers := config.ProcessEnvironmentInMap(reqConfig.Headers, r.vars)
	body := r.processBody(reqConfig.Body)

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	result := client.Execute(callCtx, reqConfig.Method, path, body, headers)

	if r.print {
		fmt.Print(r.formatter.FormatRequest(result.Request))
		fmt.Print(r.formatter.FormatResult(result))
	}

	r.recordHistory(result)
	r.extractVars(reqConfig, result)
	r.validateResponse(reqConfig, result)

	return result, nil
}

// executeSuite runs every request of a suite in order, stopping early when
// a request never produced a response.
func (r *runner) executeSuite(ctx context.Context, name string) error {
	suite, ok := r.cfg.Suites[name]
	if !ok {
		return fmt.Errorf("suite not found: %s", name)
	}

	r.vars = config.MergeEnvironments(r.vars, r.resolveSuiteVars(suite))

	for _, requestName := range suite.Requests {
		if r.print {
			fmt.Printf("\n=== Executing request: %s ===\n\n", requestName)
		}

		result, err := r.executeRequest(ctx, requestName)
		if err != nil {
			return err
		}
		if result.Response == nil && result.Failure != nil {
			return fmt.Errorf("request %s failed: %s", requestName, result.Failure.Message)
		}
	}
	return nil
}

// resolveSuiteVars substitutes environment variables into a suite's own
// variable values. Suite variables override environment variables of the
// same name once merged.
func (r *runner) resolveSuiteVars(suite config.Suite) map[string]string {
	resolved := make(map[string]string, len(suite.Vars))
	for key, value := range suite.Vars {
		resolved[key] = config.ProcessEnvironment(value, r.vars)
	}
	return resolved
}

// resolveURL substitutes variables and joins relative URLs onto the
// environment base, normalizing the slash at the seam.
func (r *runner) resolveURL(raw string) string {
	target := config.ProcessEnvironment(raw, r.vars)
	if target == "" {
		return r.env.BaseURL
	}
	if isAbsoluteURL(target) {
		return target
	}

	base := strings.TrimSuffix(r.env.BaseURL, "/")
	if !strings.HasPrefix(target, "/") {
		target = "/" + target
	}
	return base + target
}

// clientFor builds a client carrying the environment's defaults: base URL,
// headers, basic auth and client certificate.
func (r *runner) clientFor(baseURL string) (*http.Client, error) {
	options := []http.ClientOption{
		http.WithBaseURL(baseURL),
		http.WithTimeout(r.timeout),
	}

	if len(r.env.Headers) > 0 {
		options = append(options, http.WithHeaders(config.ProcessEnvironmentInMap(r.env.Headers, r.vars)))
	}

	if r.env.Auth != nil {
		options = append(options, http.WithBasicAuth(r.env.Auth.Username, r.env.Auth.Password))
	}

	cert, err := r.env.LoadCertificate()
	if err != nil {
		return nil, err
	}
	if cert != nil {
		options = append(options, http.WithClientCertificate(*cert))
	}

	return http.NewClient(options...), nil
}

// processBody substitutes variables into string bodies and into the string
// fields of object bodies. Everything else passes through untouched.
func (r *runner) processBody(body interface{}) interface{} {
	switch b := body.(type) {
	case nil:
		return nil
	case string:
		return config.ProcessEnvironment(b, r.vars)
	case map[string]interface{}:
		processed := make(map[string]interface{}, len(b))
		for key, value := range b {
			if s, ok := value.(string); ok {
				processed[key] = config.ProcessEnvironment(s, r.vars)
			} else {
				processed[key] = value
			}
		}
		return processed
	default:
		return body
	}
}

// recordHistory saves the capture, treating any storage error as a warning.
func (r *runner) recordHistory(result *http.CallResult) {
	if r.store == nil {
		return
	}
	if err := r.store.Save(uuid.NewString(), result); err != nil {
		logger := logging.Logger()
		logger.Warn().Err(err).Msg("could not record call in history")
	}
}

// extractVars pulls JSONPath values out of the response body into the
// variable set used by later requests.
func (r *runner) extractVars(reqConfig config.Request, result *http.CallResult) {
	if len(reqConfig.Extract) == 0 || result.Response == nil {
		return
	}

	extracted, err := jsonpath.ExtractAll(result.Response.Body, reqConfig.Extract)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: variable extraction incomplete: %v\n", err)
	}

	for name, value := range extracted {
		r.vars[name] = value
		if r.verbose && r.print {
			fmt.Printf("Extracted variable %s = %s\n", name, value)
		}
	}
}

// validateResponse checks the response body against the request's inline
// schema when one is configured. Validation failures are reported, not
// fatal; the capture already tells the caller how the call went.
func (r *runner) validateResponse(reqConfig config.Request, result *http.CallResult) {
	if len(reqConfig.Validate) == 0 || result.Response == nil {
		return
	}

	schemaBytes, err := json.Marshal(reqConfig.Validate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling schema for validation: %v\n", err)
		return
	}

	valid, validationErrors := jsonschema.ValidateWithErrors(result.Response.Body, string(schemaBytes))
	if !valid {
		fmt.Fprintf(os.Stderr, "%s Schema validation failed: %v\n", output.ErrorIcon(r.formatter.NoColor), validationErrors)
	} else if r.verbose && r.print {
		fmt.Printf("%s Schema validation passed\n", output.SuccessIcon(r.formatter.NoColor))
	}
}

// appendQueryParams encodes params onto path, respecting any query string
// already present.
func appendQueryParams(path string, params map[string]string) string {
	if len(params) == 0 {
		return path
	}

	values := url.Values{}
	for key, value := range params {
		values.Set(key, value)
	}

	separator := "?"
	if strings.Contains(path, "?") {
		separator = "&"
	}
	return path + separator + values.Encode()
}

// isAbsoluteURL checks if a URL carries an explicit http or https scheme.
func isAbsoluteURL(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

func init() {
	runCmd.Flags().StringP("config", "c", "", "Configuration file (required)")
	runCmd.Flags().StringP("environment", "e", "", "Environment to use (required)")
	runCmd.Flags().StringP("request", "r", "", "Request to run")
	runCmd.Flags().StringP("suite", "s", "", "Suite to run")
	runCmd.Flags().BoolP("verbose", "v", false, "Enable verbose output")
	runCmd.Flags().DurationP("timeout", "t", 30*time.Second, "Request timeout")
	runCmd.Flags().Bool("no-color", false, "Disable colored output")
	runCmd.Flags().Bool("no-history", false, "Do not record calls in history")
}
