package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/riposte/config"
	"github.com/wesleyorama2/riposte/http"
	"github.com/wesleyorama2/riposte/internal/logging"
	"github.com/wesleyorama2/riposte/internal/output"
	"github.com/wesleyorama2/riposte/pkg/jsonpath"
	"github.com/wesleyorama2/riposte/pkg/jsonschema"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Run tests from a configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		configFile, _ := cmd.Flags().GetString("config")
		environment, _ := cmd.Flags().GetString("environment")
		suite, _ := cmd.Flags().GetString("suite")
		testName, _ := cmd.Flags().GetString("test")
		verbose, _ := cmd.Flags().GetBool("verbose")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		noColor, _ := cmd.Flags().GetBool("no-color")
		format, _ := cmd.Flags().GetString("output")
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

		if suite == "" {
			if testName != "" {
				fmt.Fprintf(os.Stderr, "Error: test name specified without suite\n")
			} else {
				fmt.Fprintf(os.Stderr, "Error: suite is required\n")
			}
			os.Exit(1)
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

		if err := config.ValidateSuite(cfg, suite); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if testName != "" {
			if err := config.ValidateTest(cfg, suite, testName); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}

		suiteConfig := cfg.Suites[suite]

		r := newRunner(cfg, cfg.Environments[environment], timeout, verbose, output.NewFormatter(verbose, noColor))
		r.print = false
		if !noHistory {
			r.store = openHistory(logging.Logger())
			if r.store != nil {
				defer r.store.Close()
			}
		}

		r.vars = config.MergeEnvironments(r.vars, r.resolveSuiteVars(suiteConfig))

		// The json and yaml formats emit one suite document at the end, so
		// the per-test text narration is suppressed for them.
		var recorder suiteRecorder
		var provider output.FormatProvider
		switch output.OutputFormat(format) {
		case output.FormatJSON, output.FormatYAML:
			provider = output.GetFormatter(output.OutputFormat(format), verbose, noColor)
			recorder, _ = provider.(suiteRecorder)
		}
		quiet := recorder != nil

		if !quiet {
			fmt.Printf("▶ RUNNING TEST SUITE: %s (%d tests)\n\n", suite, len(suiteConfig.Tests))
		}

		var tally suiteTally
		startTime := time.Now()

		for i, test := range suiteConfig.Tests {
			if testName != "" && test.Name != testName {
				continue
			}

			outcome := runTest(i+1, test, r, noColor, recorder, quiet)

			tally.tests++
			if outcome.passed {
				tally.passedTests++
			} else {
				tally.failedTests++
			}
			tally.assertions += outcome.totalAssertions
			tally.passedAssertions += outcome.passedAssertions
			tally.failedAssertions += outcome.failedAssertions
		}

		duration := time.Since(startTime)

		switch f := provider.(type) {
		case *output.JSONFormatter:
			applyTally(f.TestResults, suite, tally, duration.Milliseconds())
			fmt.Println(f.GetTestSuiteJSON())
		case *output.YAMLFormatter:
			applyTally(f.TestResults, suite, tally, duration.Milliseconds())
			fmt.Print(f.GetTestSuiteYAML())
		default:
			printSuiteSummary(suite, tally, duration, noColor)
		}

		if tally.failedTests > 0 {
			os.Exit(1)
		}
	},
}

// suiteRecorder collects per-test results for the structured suite report.
// Both the JSON and YAML formatters satisfy it.
type suiteRecorder interface {
	StartTest(name string)
	AddAssertion(assertion output.AssertionResult)
	EndTest(passed bool, duration int64)
}

// suiteTally aggregates test and assertion counts across a suite run.
type suiteTally struct {
	tests            int
	passedTests      int
	failedTests      int
	assertions       int
	passedAssertions int
	failedAssertions int
}

// applyTally copies the aggregate counters onto the suite result document.
func applyTally(results *output.TestSuiteResult, suiteName string, tally suiteTally, durationMs int64) {
	if results == nil {
		return
	}
	results.Suite = suiteName
	results.TotalTests = tally.tests
	results.PassedTests = tally.passedTests
	results.FailedTests = tally.failedTests
	results.TotalAssertions = tally.assertions
	results.PassedAssertions = tally.passedAssertions
	results.FailedAssertions = tally.failedAssertions
	results.Duration = durationMs
}

// printSuiteSummary renders the text-mode totals block.
func printSuiteSummary(suite string, tally suiteTally, duration time.Duration, noColor bool) {
	fmt.Printf("\n▶ TEST SUITE SUMMARY: %s\n", suite)

	testColor := color.New(color.Bold)
	if tally.failedTests > 0 {
		testColor.Add(color.FgRed)
	} else {
		testColor.Add(color.FgGreen)
	}
	if noColor {
		testColor.DisableColor()
	}

	testStatus := "✅"
	if tally.failedTests > 0 {
		testStatus = "❌"
	}

	fmt.Printf("  %s Tests: %s passed, %s failed\n",
		testStatus,
		testColor.Sprint(tally.passedTests),
		testColor.Sprint(tally.failedTests))

	assertionStatus := "✅"
	if tally.failedAssertions > 0 {
		assertionStatus = "❌"
	}

	fmt.Printf("  %s Assertions: %s passed, %s failed\n",
		assertionStatus,
		testColor.Sprint(tally.passedAssertions),
		testColor.Sprint(tally.failedAssertions))

	fmt.Printf("  %s Total time: %dms\n", testStatus, duration.Milliseconds())
}

// testOutcome tallies one test's assertion results.
type testOutcome struct {
	passed           bool
	totalAssertions  int
	passedAssertions int
	failedAssertions int
}

// runTest executes one configured test: run its request, then evaluate every
// assertion against the capture.
func runTest(index int, test config.Test, r *runner, noColor bool, recorder suiteRecorder, quiet bool) testOutcome {
	if !quiet {
		fmt.Printf("TEST %d: %s\n", index, test.Name)
	}

	if recorder != nil {
		recorder.StartTest(test.Name)
	}

	result, err := r.executeRequest(context.Background(), test.Request)
	if err != nil {
		if !quiet {
			fmt.Fprintf(os.Stderr, "  Error: %v\n", err)
		}
		if recorder != nil {
			recorder.EndTest(false, 0)
		}
		return testOutcome{passed: false}
	}

	if !quiet {
		fmt.Print("  " + strings.ReplaceAll(r.formatter.FormatRequest(result.Request), "\n", "\n  "))
		fmt.Print("  " + strings.ReplaceAll(r.formatter.FormatResult(result), "\n", "\n  "))
	}

	outcome := testOutcome{
		passed:          true,
		totalAssertions: len(test.Assertions),
	}

	for _, assertion := range test.Assertions {
		passed, message := runAssertion(assertion, result, r.cfg)

		if recorder != nil {
			recorder.AddAssertion(output.AssertionResult{
				Type:    assertionType(assertion),
				Passed:  passed,
				Message: message,
			})
		}

		if passed {
			outcome.passedAssertions++
			if !quiet {
				fmt.Printf("  %s ASSERTION PASSED: %s\n", output.SuccessIcon(noColor), message)
			}
		} else {
			outcome.failedAssertions++
			outcome.passed = false
			if !quiet {
				fmt.Printf("  %s ASSERTION FAILED: %s\n", output.ErrorIcon(noColor), message)
			}
		}
	}

	if !quiet {
		if outcome.passed {
			fmt.Printf("\n  %s TEST PASSED (%dms)\n\n", output.SuccessIcon(noColor), result.DurationMillis())
		} else {
			fmt.Printf("\n  %s TEST FAILED (%dms)\n\n", output.ErrorIcon(noColor), result.DurationMillis())
		}
	}

	if recorder != nil {
		recorder.EndTest(outcome.passed, result.DurationMillis())
	}

	return outcome
}

// assertionType names an assertion by its distinguishing key.
func assertionType(assertion map[string]interface{}) string {
	for _, key := range []string{"failure", "status", "responseTime", "header", "path", "schema"} {
		if _, ok := assertion[key]; ok {
			return key
		}
	}
	return "unknown"
}

// runAssertion evaluates a single assertion against a call capture.
func runAssertion(assertion map[string]interface{}, result *http.CallResult, cfg *config.Config) (bool, string) {
	// Failure assertions work on the capture itself and are the only kind
	// that can pass when no response ever arrived.
	if kind, ok := assertion["failure"]; ok {
		return assertFailure(fmt.Sprintf("%v", kind), result)
	}

	if result.Response == nil {
		if result.Failure != nil {
			return false, fmt.Sprintf("No response received: %s", result.Failure.Error())
		}
		return false, "No response received"
	}

	if status, ok := assertion["status"]; ok {
		statusInt, _ := strconv.Atoi(fmt.Sprintf("%v", status))
		if statusInt != result.Response.StatusCode {
			return false, fmt.Sprintf("Status code is %d, expected %d", result.Response.StatusCode, statusInt)
		}
		return true, fmt.Sprintf("Status code is %d", result.Response.StatusCode)
	}

	if responseTime, ok := assertion["responseTime"]; ok {
		return assertResponseTime(fmt.Sprintf("%v", responseTime), result.DurationMillis())
	}

	if header, ok := assertion["header"]; ok {
		return assertHeader(fmt.Sprintf("%v", header), assertion, result.Response)
	}

	if path, ok := assertion["path"]; ok {
		return assertPath(fmt.Sprintf("%v", path), assertion, result.Response.Body)
	}

	if schema, ok := assertion["schema"]; ok {
		return assertSchema(fmt.Sprintf("%v", schema), result.Response.Body, cfg)
	}

	return false, "Unknown assertion"
}

// assertFailure checks the call's failure classification. The value "none"
// asserts the call recorded no failure at all.
func assertFailure(expected string, result *http.CallResult) (bool, string) {
	if expected == "none" {
		if result.Failure == nil {
			return true, "No failure recorded"
		}
		return false, fmt.Sprintf("Failure recorded: %s", result.Failure.Error())
	}

	if result.Failure == nil {
		return false, fmt.Sprintf("No failure recorded, expected %s", expected)
	}
	if string(result.Failure.Kind) == expected {
		return true, fmt.Sprintf("Failure kind is %s", expected)
	}
	return false, fmt.Sprintf("Failure kind is %s, expected %s", result.Failure.Kind, expected)
}

// assertResponseTime compares the call duration against an expression like
// "<500", ">=10" or a bare number of milliseconds. Two-character operators
// must be matched before their single-character prefixes.
func assertResponseTime(expr string, actualMs int64) (bool, string) {
	type operator struct {
		prefix string
		verb   string
		holds  func(actual, bound int64) bool
	}
	operators := []operator{
		{"<=", "less than or equal to", func(a, b int64) bool { return a <= b }},
		{">=", "greater than or equal to", func(a, b int64) bool { return a >= b }},
		{"<", "less than", func(a, b int64) bool { return a < b }},
		{">", "greater than", func(a, b int64) bool { return a > b }},
		{"=", "equal to", func(a, b int64) bool { return a == b }},
		{"", "equal to", func(a, b int64) bool { return a == b }},
	}

	for _, op := range operators {
		if !strings.HasPrefix(expr, op.prefix) {
			continue
		}

		bound, err := strconv.ParseInt(strings.TrimSpace(strings.TrimPrefix(expr, op.prefix)), 10, 64)
		if err != nil {
			return false, fmt.Sprintf("Invalid response time value: %s", expr)
		}

		if op.holds(actualMs, bound) {
			return true, fmt.Sprintf("Response time %dms is %s %dms", actualMs, op.verb, bound)
		}
		return false, fmt.Sprintf("Response time %dms is not %s %dms", actualMs, op.verb, bound)
	}

	return false, fmt.Sprintf("Invalid response time value: %s", expr)
}

// assertHeader checks exists/equals/contains/matches conditions against a
// response header, looked up by canonical name.
func assertHeader(name string, assertion map[string]interface{}, resp *http.ResponseCapture) (bool, string) {
	value := resp.Header(name)

	if exists, ok := assertion["exists"]; ok {
		existsBool, _ := strconv.ParseBool(fmt.Sprintf("%v", exists))
		headerExists := value != ""
		if existsBool == headerExists {
			return true, fmt.Sprintf("Header %s exists: %v", name, existsBool)
		}
		return false, fmt.Sprintf("Header %s exists: %v, expected: %v", name, headerExists, existsBool)
	}

	if equals, ok := assertion["equals"]; ok {
		expected := fmt.Sprintf("%v", equals)
		if value == expected {
			return true, fmt.Sprintf("Header %s equals %s", name, expected)
		}
		return false, fmt.Sprintf("Header %s value is %s, expected %s", name, value, expected)
	}

	if contains, ok := assertion["contains"]; ok {
		substr := fmt.Sprintf("%v", contains)
		if strings.Contains(value, substr) {
			return true, fmt.Sprintf("Header %s contains %s", name, substr)
		}
		return false, fmt.Sprintf("Header %s value %s does not contain %s", name, value, substr)
	}

	if matches, ok := assertion["matches"]; ok {
		patternStr := fmt.Sprintf("%v", matches)
		pattern, err := regexp.Compile(patternStr)
		if err != nil {
			return false, fmt.Sprintf("Invalid regex pattern: %s", patternStr)
		}
		if pattern.MatchString(value) {
			return true, fmt.Sprintf("Header %s matches pattern %s", name, patternStr)
		}
		return false, fmt.Sprintf("Header %s value %s does not match pattern %s", name, value, patternStr)
	}

	return false, fmt.Sprintf("Header %s: no condition given", name)
}

// assertPath checks exists/equals/isArray/minLength/matches/contains
// conditions against a JSONPath extraction from the response body.
func assertPath(path string, assertion map[string]interface{}, body string) (bool, string) {
	if exists, ok := assertion["exists"]; ok {
		existsBool, _ := strconv.ParseBool(fmt.Sprintf("%v", exists))
		pathExists := jsonpath.Exists(body, path)
		if existsBool == pathExists {
			return true, fmt.Sprintf("Path %s exists: %v", path, existsBool)
		}
		return false, fmt.Sprintf("Path %s exists: %v, expected: %v", path, pathExists, existsBool)
	}

	value, err := jsonpath.Extract(body, path)
	if err != nil {
		return false, fmt.Sprintf("Failed to extract path %s: %v", path, err)
	}

	if equals, ok := assertion["equals"]; ok {
		expected := fmt.Sprintf("%v", equals)
		if value == expected {
			return true, fmt.Sprintf("Path %s equals %s", path, expected)
		}
		return false, fmt.Sprintf("Path %s value is %s, expected %s", path, value, expected)
	}

	if _, ok := assertion["isArray"]; ok {
		if strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]") {
			return true, fmt.Sprintf("Path %s is an array", path)
		}
		return false, fmt.Sprintf("Path %s is not an array", path)
	}

	if minLength, ok := assertion["minLength"]; ok {
		minLengthInt, _ := strconv.Atoi(fmt.Sprintf("%v", minLength))

		var items []interface{}
		if err := json.Unmarshal([]byte(value), &items); err != nil {
			return false, fmt.Sprintf("Path %s value is not a valid array", path)
		}

		if len(items) >= minLengthInt {
			return true, fmt.Sprintf("Path %s has %d items (min: %d)", path, len(items), minLengthInt)
		}
		return false, fmt.Sprintf("Path %s has %d items, expected at least %d", path, len(items), minLengthInt)
	}

	if matches, ok := assertion["matches"]; ok {
		patternStr := fmt.Sprintf("%v", matches)
		pattern, err := regexp.Compile(patternStr)
		if err != nil {
			return false, fmt.Sprintf("Invalid regex pattern: %s", patternStr)
		}
		if pattern.MatchString(value) {
			return true, fmt.Sprintf("Path %s matches pattern %s", path, patternStr)
		}
		return false, fmt.Sprintf("Path %s value %s does not match pattern %s", path, value, patternStr)
	}

	if contains, ok := assertion["contains"]; ok {
		substr := fmt.Sprintf("%v", contains)
		if strings.Contains(value, substr) {
			return true, fmt.Sprintf("Path %s contains %s", path, substr)
		}
		return false, fmt.Sprintf("Path %s value %s does not contain %s", path, value, substr)
	}

	return false, fmt.Sprintf("Path %s: no condition given", path)
}

// assertSchema validates the response body against a schema from the
// configuration's schemas section, falling back to a schema file on disk.
// Relative file references resolve against the config file's directory.
func assertSchema(ref string, body string, cfg *config.Config) (bool, string) {
	path := ref
	if cfg != nil {
		if inline, ok := cfg.Schemas[ref]; ok {
			valid, errs := jsonschema.ValidateWithErrors(body, string(inline))
			if valid {
				return true, fmt.Sprintf("Body matches schema %s", ref)
			}
			return false, fmt.Sprintf("Body does not match schema %s: %v", ref, errs)
		}
		if cfg.BaseDir != "" && !filepath.IsAbs(path) {
			path = filepath.Join(cfg.BaseDir, path)
		}
	}

	valid, errs := jsonschema.ValidateWithSchema(body, path)
	if valid {
		return true, fmt.Sprintf("Body matches schema file %s", ref)
	}
	return false, fmt.Sprintf("Body does not match schema file %s: %v", ref, errs)
}

func init() {
	testCmd.Flags().StringP("config", "c", "", "Configuration file (required)")
	testCmd.Flags().StringP("environment", "e", "", "Environment to use (required)")
	testCmd.Flags().StringP("suite", "s", "", "Test suite to run")
	testCmd.Flags().String("test", "", "Specific test to run")
	testCmd.Flags().BoolP("verbose", "v", false, "Enable verbose output")
	testCmd.Flags().DurationP("timeout", "t", 30*time.Second, "Request timeout")
	testCmd.Flags().Bool("no-color", false, "Disable colored output")
	testCmd.Flags().StringP("output", "o", "text", "Output format: text, json or yaml")
	testCmd.Flags().Bool("no-history", false, "Do not record calls in history")
}
