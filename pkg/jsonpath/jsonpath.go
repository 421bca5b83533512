// Package jsonpath extracts values from JSON documents using a practical
// subset of JSONPath: dot notation, bracket notation with quoted keys, and
// numeric array indexes. Filters and recursive descent are not supported.
package jsonpath

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Extract returns the value at path as a string. JSON null extracts as the
// string "null"; a missing path is an error.
func Extract(doc string, path string) (string, error) {
	if doc == "" {
		return "", fmt.Errorf("empty JSON document")
	}
	if path == "" {
		return "", fmt.Errorf("empty JSONPath expression")
	}

	result := gjson.Get(doc, toGjsonPath(path))
	if !result.Exists() {
		return "", fmt.Errorf("path not found: %s", path)
	}

	if result.Type == gjson.Null {
		return "null", nil
	}

	return result.String(), nil
}

// Exists reports whether path resolves to a value in the document.
func Exists(doc string, path string) bool {
	if doc == "" || path == "" {
		return false
	}
	return gjson.Get(doc, toGjsonPath(path)).Exists()
}

// ExtractAll extracts a named set of paths. All extractions are attempted;
// when any fail, the successful values are returned together with an error
// naming every failed path.
func ExtractAll(doc string, paths map[string]string) (map[string]string, error) {
	if doc == "" {
		return nil, fmt.Errorf("empty JSON document")
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no JSONPath expressions provided")
	}

	values := make(map[string]string)
	var failed []string

	for name, path := range paths {
		value, err := Extract(doc, path)
		if err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		values[name] = value
	}

	if len(failed) > 0 {
		return values, fmt.Errorf("extraction errors: %s", strings.Join(failed, "; "))
	}

	return values, nil
}

// toGjsonPath rewrites a JSONPath expression into gjson syntax:
//
//	$.users[0].name -> users.0.name
//	$['users'][0]   -> users.0
//	$[0].id         -> 0.id
//	$               -> @this
func toGjsonPath(path string) string {
	path = strings.TrimPrefix(path, "$")
	path = strings.TrimPrefix(path, ".")
	if path == "" {
		return "@this"
	}

	var b strings.Builder
	for i := 0; i < len(path); i++ {
		switch c := path[i]; c {
		case '[', '.':
			// Both separate path segments; never emit a leading or
			// doubled dot ("$.items.[0]" is sloppy but unambiguous).
			if s := b.String(); len(s) > 0 && s[len(s)-1] != '.' {
				b.WriteByte('.')
			}
		case ']', '\'', '"':
			// Closing brackets and key quotes carry no meaning in gjson.
		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}
