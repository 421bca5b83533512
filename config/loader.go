package config

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level configuration
type Config struct {
	Environments map[string]Environment     `json:"environments" yaml:"environments"`
	Requests     map[string]Request         `json:"requests" yaml:"requests"`
	Suites       map[string]Suite           `json:"suites" yaml:"suites"`
	Schemas      map[string]json.RawMessage `json:"schemas,omitempty" yaml:"schemas,omitempty"`

	// BaseDir is the directory the configuration was loaded from. Relative
	// schema file references resolve against it.
	BaseDir string `json:"-" yaml:"-"`
}

// Environment represents an environment configuration
type Environment struct {
	BaseURL  string            `json:"baseUrl" yaml:"baseUrl"`
	Headers  map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Auth     *AuthConfig       `json:"auth,omitempty" yaml:"auth,omitempty"`
	CertFile string            `json:"certFile,omitempty" yaml:"certFile,omitempty"`
	KeyFile  string            `json:"keyFile,omitempty" yaml:"keyFile,omitempty"`
	Vars     map[string]string `json:"variables,omitempty" yaml:"variables,omitempty"`
}

// AuthConfig represents a basic-auth credential pair
type AuthConfig struct {
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
}

// Request represents a request configuration
type Request struct {
	URL         string                 `json:"url" yaml:"url"`
	Method      string                 `json:"method" yaml:"method"`
	Headers     map[string]string      `json:"headers,omitempty" yaml:"headers,omitempty"`
	QueryParams map[string]string      `json:"queryParams,omitempty" yaml:"queryParams,omitempty"`
	Body        interface{}            `json:"body,omitempty" yaml:"body,omitempty"`
	Extract     map[string]string      `json:"extract,omitempty" yaml:"extract,omitempty"`
	Validate    map[string]interface{} `json:"validate,omitempty" yaml:"validate,omitempty"`
}

// Suite represents a suite of requests
type Suite struct {
	Requests []string          `json:"requests" yaml:"requests"`
	Vars     map[string]string `json:"variables,omitempty" yaml:"variables,omitempty"`
	Tests    []Test            `json:"tests,omitempty" yaml:"tests,omitempty"`
}

// Test represents a test configuration
type Test struct {
	Name       string                   `json:"name" yaml:"name"`
	Request    string                   `json:"request" yaml:"request"`
	Assertions []map[string]interface{} `json:"assertions" yaml:"assertions"`
}

// LoadConfig loads a configuration file. The format is determined by
// extension: .yaml and .yml parse as YAML, everything else as JSON.
func LoadConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config, err := ParseConfig(data, path)
	if err != nil {
		return nil, err
	}
	config.BaseDir = GetConfigDir(path)

	return config, nil
}

// ParseConfig parses configuration data, using the extension of path to
// choose the format.
func ParseConfig(data []byte, path string) (*Config, error) {
	var config Config

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("error parsing YAML config: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	return &config, nil
}

// LoadCertificate loads the environment's client certificate pair. Returns
// nil when the environment does not configure one.
func (e *Environment) LoadCertificate() (*tls.Certificate, error) {
	if e.CertFile == "" && e.KeyFile == "" {
		return nil, nil
	}
	if e.CertFile == "" || e.KeyFile == "" {
		return nil, fmt.Errorf("certFile and keyFile must be set together")
	}

	cert, err := tls.LoadX509KeyPair(e.CertFile, e.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("error loading client certificate: %w", err)
	}
	return &cert, nil
}

// ProcessEnvironment processes variable placeholders in a string. Variables
// are written {{name}}; unresolved placeholders are left as-is.
func ProcessEnvironment(input string, env map[string]string) string {
	result := input

	for key, value := range env {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}

	return result
}

// ProcessEnvironmentInMap processes variable placeholders in a map
func ProcessEnvironmentInMap(input map[string]string, env map[string]string) map[string]string {
	result := make(map[string]string)

	for key, value := range input {
		result[key] = ProcessEnvironment(value, env)
	}

	return result
}

// MergeEnvironments merges two variable sets, with the second taking precedence
func MergeEnvironments(base, override map[string]string) map[string]string {
	result := make(map[string]string)

	for key, value := range base {
		result[key] = value
	}

	for key, value := range override {
		result[key] = value
	}

	return result
}

// GetConfigDir returns the directory containing the config file
func GetConfigDir(configPath string) string {
	return filepath.Dir(configPath)
}
