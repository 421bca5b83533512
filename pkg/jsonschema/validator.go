// Package jsonschema validates JSON documents against JSON Schema
// definitions. It wraps github.com/santhosh-tekuri/jsonschema/v5 and
// flattens its nested cause tree into a flat error list suitable for
// test reporting.
package jsonschema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidationErrors is a collection of schema violations for one document.
type ValidationErrors []error

// Error implements the error interface for ValidationErrors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, err := range ve {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// registerFormats turns on format assertion. Recent drafts treat "format"
// as an annotation unless the compiler is told to enforce it, and a schema
// that declares "format": "email" expects enforcement.
func registerFormats(compiler *jsonschema.Compiler) {
	compiler.AssertFormat = true
}

// compile parses schemaStr into a compiled schema. The resource name only
// appears in error messages; inline schemas are never fetched.
func compile(schemaStr string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	registerFormats(compiler)
	if err := compiler.AddResource("schema.json", strings.NewReader(schemaStr)); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return schema, nil
}

// validateDoc parses jsonStr and checks it against a compiled schema,
// flattening any violations into a ValidationErrors list.
func validateDoc(schema *jsonschema.Schema, jsonStr string) (bool, ValidationErrors) {
	var doc interface{}
	if err := json.Unmarshal([]byte(jsonStr), &doc); err != nil {
		return false, ValidationErrors{fmt.Errorf("invalid JSON: %w", err)}
	}

	err := schema.Validate(doc)
	if err == nil {
		return true, nil
	}

	if validationErr, ok := err.(*jsonschema.ValidationError); ok {
		return false, flattenCauses(validationErr)
	}
	return false, ValidationErrors{err}
}

// Validate reports whether jsonStr conforms to schemaStr. A schema that
// does not compile or a document that does not parse is an error; a
// document that parses but violates the schema is simply (false, nil).
func Validate(jsonStr, schemaStr string) (bool, error) {
	schema, err := compile(schemaStr)
	if err != nil {
		return false, err
	}

	var doc interface{}
	if err := json.Unmarshal([]byte(jsonStr), &doc); err != nil {
		return false, fmt.Errorf("invalid JSON: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return false, nil
	}
	return true, nil
}

// ValidateWithErrors reports whether jsonStr conforms to schemaStr and, when
// it does not, returns every violation rather than only the first.
func ValidateWithErrors(jsonStr, schemaStr string) (bool, ValidationErrors) {
	schema, err := compile(schemaStr)
	if err != nil {
		return false, ValidationErrors{err}
	}
	return validateDoc(schema, jsonStr)
}

// ValidateWithSchema validates jsonStr against a schema loaded from a local
// file path. Used when an assertion names a schema file instead of an
// inline definition.
func ValidateWithSchema(jsonStr, schemaPath string) (bool, ValidationErrors) {
	compiler := jsonschema.NewCompiler()
	registerFormats(compiler)

	schema, err := compiler.Compile(schemaPath)
	if err != nil {
		return false, ValidationErrors{fmt.Errorf("invalid schema: %w", err)}
	}
	return validateDoc(schema, jsonStr)
}

// flattenCauses walks the nested cause tree of a validation error and
// returns one error per violation, each tagged with its instance location.
func flattenCauses(err *jsonschema.ValidationError) ValidationErrors {
	var errors ValidationErrors

	if err.Message != "" {
		errors = append(errors, fmt.Errorf("validation error at %s: %s", err.InstanceLocation, err.Message))
	}

	for _, cause := range err.Causes {
		errors = append(errors, flattenCauses(cause)...)
	}

	return errors
}
