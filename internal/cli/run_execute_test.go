package cli

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wesleyorama2/riposte/config"
	"github.com/wesleyorama2/riposte/internal/output"
)

// newTestRunner builds a quiet runner against the given server URL.
func newTestRunner(cfg *config.Config, baseURL string, vars map[string]string) *runner {
	r := newRunner(
		cfg,
		config.Environment{BaseURL: baseURL, Vars: vars},
		30*time.Second,
		false,
		output.NewFormatter(false, true),
	)
	r.print = false
	return r
}

func TestExecuteRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/users" && r.Method == "GET" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id":   1,
				"name": "Test User",
			})
			return
		}

		if r.URL.Path == "/users" && r.Method == "POST" {
			body, _ := io.ReadAll(r.Body)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			w.Write(body)
			return
		}

		if r.URL.Path == "/error" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		if r.URL.Path == "/extract" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"token": "test-token",
				"user": map[string]interface{}{
					"id":   1,
					"name": "Test User",
				},
			})
			return
		}

		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	cfg := &config.Config{
		Requests: map[string]config.Request{
			"getUsers": {
				URL:     "/users",
				Method:  "GET",
				Headers: map[string]string{},
			},
			"getError": {
				URL:     "/error",
				Method:  "GET",
				Headers: map[string]string{},
			},
			"getNotFound": {
				URL:     "/not-found",
				Method:  "GET",
				Headers: map[string]string{},
			},
			"extractToken": {
				URL:     "/extract",
				Method:  "GET",
				Headers: map[string]string{},
				Extract: map[string]string{
					"token": "$.token",
					"name":  "$.user.name",
				},
			},
			"withValidation": {
				URL:     "/users",
				Method:  "GET",
				Headers: map[string]string{},
				Validate: map[string]interface{}{
					"type":     "object",
					"required": []string{"id", "name"},
					"properties": map[string]interface{}{
						"id":   map[string]interface{}{"type": "number"},
						"name": map[string]interface{}{"type": "string"},
					},
				},
			},
			"withBody": {
				URL:    "/users",
				Method: "POST",
				Headers: map[string]string{
					"Content-Type": "application/json",
				},
				Body: map[string]interface{}{
					"name": "{{userName}}",
				},
			},
			"withStringBody": {
				URL:    "/users",
				Method: "POST",
				Headers: map[string]string{
					"Content-Type": "application/json",
				},
				Body: `{"name": "New User"}`,
			},
			"withQueryParams": {
				URL:     "/users",
				Method:  "GET",
				Headers: map[string]string{},
				QueryParams: map[string]string{
					"id": "1",
				},
			},
		},
	}

	tests := []struct {
		name          string
		requestName   string
		vars          map[string]string
		expectedError bool
	}{
		{
			name:          "Valid request",
			requestName:   "getUsers",
			expectedError: false,
		},
		{
			name:          "Error response",
			requestName:   "getError",
			expectedError: false, // HTTP errors are captures, not errors
		},
		{
			name:          "Not found response",
			requestName:   "getNotFound",
			expectedError: false,
		},
		{
			name:          "Non-existent request",
			requestName:   "nonExistentRequest",
			expectedError: true,
		},
		{
			name:          "Extract variables",
			requestName:   "extractToken",
			expectedError: false,
		},
		{
			name:          "With validation",
			requestName:   "withValidation",
			expectedError: false,
		},
		{
			name:          "With object body",
			requestName:   "withBody",
			vars:          map[string]string{"userName": "New User"},
			expectedError: false,
		},
		{
			name:          "With string body",
			requestName:   "withStringBody",
			expectedError: false,
		},
		{
			name:          "With query params",
			requestName:   "withQueryParams",
			expectedError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRunner(cfg, server.URL, tt.vars)

			result, err := r.executeRequest(context.Background(), tt.requestName)

			if tt.expectedError {
				if err == nil {
					t.Errorf("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Errorf("Expected no error, got %v", err)
				return
			}
			if result == nil {
				t.Fatalf("Expected a result, got nil")
			}
			if result.Response == nil {
				t.Fatalf("Expected a response, got nil (failure: %v)", result.Failure)
			}
		})
	}
}

func TestExecuteRequest_ErrorStatusCapture(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "boom"}`))
	}))
	defer server.Close()

	cfg := &config.Config{
		Requests: map[string]config.Request{
			"getError": {URL: "/error", Method: "GET"},
		},
	}

	r := newTestRunner(cfg, server.URL, nil)

	result, err := r.executeRequest(context.Background(), "getError")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// An error status populates both sides of the capture
	if result.Response == nil {
		t.Fatalf("Expected a response, got nil")
	}
	if result.Response.StatusCode != 500 {
		t.Errorf("Expected status 500, got %d", result.Response.StatusCode)
	}
	if result.Failure == nil {
		t.Fatalf("Expected a failure, got nil")
	}
	if result.Failure.Kind != "http_status_error" {
		t.Errorf("Expected http_status_error, got %s", result.Failure.Kind)
	}
}

func TestExecuteRequest_TransportFailureCapture(t *testing.T) {
	// A server that is already closed refuses connections
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	cfg := &config.Config{
		Requests: map[string]config.Request{
			"unreachable": {URL: "/anything", Method: "GET"},
		},
	}

	r := newTestRunner(cfg, server.URL, nil)

	result, err := r.executeRequest(context.Background(), "unreachable")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Response != nil {
		t.Errorf("Expected no response, got %+v", result.Response)
	}
	if result.Failure == nil {
		t.Fatalf("Expected a failure, got nil")
	}
	if result.Failure.Kind != "transport_error" {
		t.Errorf("Expected transport_error, got %s", result.Failure.Kind)
	}
}

func TestExecuteRequest_VariableExtraction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"token": "secret-token",
			"user":  map[string]interface{}{"name": "Alice"},
		})
	}))
	defer server.Close()

	cfg := &config.Config{
		Requests: map[string]config.Request{
			"login": {
				URL:    "/login",
				Method: "POST",
				Extract: map[string]string{
					"token":    "$.token",
					"userName": "$.user.name",
				},
			},
		},
	}

	r := newTestRunner(cfg, server.URL, nil)

	if _, err := r.executeRequest(context.Background(), "login"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if r.vars["token"] != "secret-token" {
		t.Errorf("Expected token to be extracted, got %q", r.vars["token"])
	}
	if r.vars["userName"] != "Alice" {
		t.Errorf("Expected userName to be extracted, got %q", r.vars["userName"])
	}
}

func TestExecuteRequest_VariableSubstitution(t *testing.T) {
	var gotPath, gotQuery, gotAuth string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	cfg := &config.Config{
		Requests: map[string]config.Request{
			"getUser": {
				URL:    "/users/{{userId}}",
				Method: "POST",
				Headers: map[string]string{
					"Authorization": "Bearer {{token}}",
				},
				QueryParams: map[string]string{
					"tenant": "{{tenant}}",
				},
				Body: map[string]interface{}{
					"requestedBy": "{{userName}}",
					"limit":       float64(10),
				},
			},
		},
	}

	vars := map[string]string{
		"userId":   "42",
		"token":    "abc123",
		"tenant":   "acme",
		"userName": "Alice",
	}

	r := newTestRunner(cfg, server.URL, vars)

	if _, err := r.executeRequest(context.Background(), "getUser"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if gotPath != "/users/42" {
		t.Errorf("Expected path /users/42, got %s", gotPath)
	}
	if gotQuery != "tenant=acme" {
		t.Errorf("Expected query tenant=acme, got %s", gotQuery)
	}
	if gotAuth != "Bearer abc123" {
		t.Errorf("Expected substituted Authorization header, got %s", gotAuth)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(gotBody, &body); err != nil {
		t.Fatalf("Server received invalid JSON body: %v", err)
	}
	if body["requestedBy"] != "Alice" {
		t.Errorf("Expected substituted body field, got %v", body["requestedBy"])
	}
	if body["limit"] != float64(10) {
		t.Errorf("Non-string body fields should pass through, got %v", body["limit"])
	}
}

func TestExecuteRequest_EnvironmentHeaders(t *testing.T) {
	var gotCustom, gotOverride string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCustom = r.Header.Get("X-Env-Header")
		gotOverride = r.Header.Get("X-Shared")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	cfg := &config.Config{
		Requests: map[string]config.Request{
			"getUsers": {
				URL:    "/users",
				Method: "GET",
				Headers: map[string]string{
					"X-Shared": "from-request",
				},
			},
		},
	}

	r := newRunner(
		cfg,
		config.Environment{
			BaseURL: server.URL,
			Headers: map[string]string{
				"X-Env-Header": "from-env",
				"X-Shared":     "from-env",
			},
		},
		30*time.Second,
		false,
		output.NewFormatter(false, true),
	)
	r.print = false

	if _, err := r.executeRequest(context.Background(), "getUsers"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if gotCustom != "from-env" {
		t.Errorf("Expected environment header to be sent, got %q", gotCustom)
	}
	// Configured defaults win: a per-request header never overwrites a key
	// the environment already set
	if gotOverride != "from-env" {
		t.Errorf("Expected environment header to win over request header, got %q", gotOverride)
	}
}
