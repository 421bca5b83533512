package jsonpath

import (
	"strings"
	"testing"
)

const doc = `{
	"name": "John Doe",
	"age": 30,
	"address": {
		"street": "123 Main St",
		"city": "Anytown"
	},
	"phones": [
		{"type": "home", "number": "555-1234"},
		{"type": "work", "number": "555-5678"}
	],
	"active": true,
	"scores": [10, 20, 30, 40],
	"metadata": null
}`

func TestExtract(t *testing.T) {
	tests := []struct {
		name          string
		path          string
		expected      string
		expectedError bool
	}{
		{
			name:     "root path",
			path:     "$",
			expected: doc,
		},
		{
			name:     "simple property",
			path:     "$.name",
			expected: "John Doe",
		},
		{
			name:     "numeric property",
			path:     "$.age",
			expected: "30",
		},
		{
			name:     "boolean property",
			path:     "$.active",
			expected: "true",
		},
		{
			name:     "nested property",
			path:     "$.address.city",
			expected: "Anytown",
		},
		{
			name:     "array element",
			path:     "$.scores[1]",
			expected: "20",
		},
		{
			name:     "object in array",
			path:     "$.phones[0].number",
			expected: "555-1234",
		},
		{
			name:     "bracket notation single quotes",
			path:     "$['name']",
			expected: "John Doe",
		},
		{
			name:     "bracket notation double quotes",
			path:     `$["name"]`,
			expected: "John Doe",
		},
		{
			name:     "null value",
			path:     "$.metadata",
			expected: "null",
		},
		{
			name:          "missing path",
			path:          "$.missing",
			expectedError: true,
		},
		{
			name:          "empty path",
			path:          "",
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := Extract(doc, tt.path)
			if tt.expectedError {
				if err == nil {
					t.Errorf("Expected error for path %s, got value %q", tt.path, value)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error for path %s, got %v", tt.path, err)
			}
			if value != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, value)
			}
		})
	}
}

func TestExtract_EmptyDocument(t *testing.T) {
	if _, err := Extract("", "$.name"); err == nil {
		t.Error("Expected error for empty document")
	}
}

func TestExtract_RootArray(t *testing.T) {
	value, err := Extract(`[{"id": 7}]`, "$[0].id")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if value != "7" {
		t.Errorf("Expected 7, got %s", value)
	}
}

func TestExists(t *testing.T) {
	if !Exists(doc, "$.name") {
		t.Error("Expected $.name to exist")
	}
	if !Exists(doc, "$.metadata") {
		t.Error("Expected $.metadata to exist even though it is null")
	}
	if Exists(doc, "$.missing") {
		t.Error("Expected $.missing not to exist")
	}
	if Exists("", "$.name") {
		t.Error("Expected empty document to have no paths")
	}
}

func TestExtractAll(t *testing.T) {
	values, err := ExtractAll(doc, map[string]string{
		"userName": "$.name",
		"city":     "$.address.city",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if values["userName"] != "John Doe" {
		t.Errorf("Expected John Doe, got %s", values["userName"])
	}
	if values["city"] != "Anytown" {
		t.Errorf("Expected Anytown, got %s", values["city"])
	}
}

func TestExtractAll_PartialFailure(t *testing.T) {
	values, err := ExtractAll(doc, map[string]string{
		"userName": "$.name",
		"missing":  "$.nope",
	})
	if err == nil {
		t.Fatal("Expected an error naming the failed path")
	}
	if !strings.Contains(err.Error(), "missing") {
		t.Errorf("Expected error to name the failed extraction, got %v", err)
	}
	if values["userName"] != "John Doe" {
		t.Errorf("Expected successful extraction to be kept, got %v", values)
	}
}

func TestExtractAll_NoPaths(t *testing.T) {
	if _, err := ExtractAll(doc, nil); err == nil {
		t.Error("Expected error for empty path set")
	}
}

func TestToGjsonPath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"$", "@this"},
		{"$.name", "name"},
		{"$.users[0].name", "users.0.name"},
		{"$['users'][0]", "users.0"},
		{"$[0].id", "0.id"},
		{"$.a.b.c", "a.b.c"},
		{"$.items.[0]", "items.0"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := toGjsonPath(tt.path); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}
