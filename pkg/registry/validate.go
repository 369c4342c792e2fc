package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

var (
	ErrUnknownTaskType = errors.New("UNKNOWN_TASK_TYPE")
	ErrInvalidSchema   = errors.New("INVALID_SCHEMA")
)

// SchemaError lists every violation found in a document.
type SchemaError struct {
	Violations []string
}

func (e *SchemaError) Error() string {
	return "schema validation failed: " + strings.Join(e.Violations, "; ")
}

// Schema is a compiled JSON schema.
type Schema struct {
	schema *gojsonschema.Schema
}

// CompileSchema accepts a decoded schema document (map) or raw JSON text.
func CompileSchema(doc interface{}) (*Schema, error) {
	var loader gojsonschema.JSONLoader
	switch d := doc.(type) {
	case string:
		loader = gojsonschema.NewStringLoader(d)
	case []byte:
		loader = gojsonschema.NewBytesLoader(d)
	default:
		loader = gojsonschema.NewGoLoader(d)
	}

	s, err := gojsonschema.NewSchema(loader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	return &Schema{schema: s}, nil
}

// MustCompileSchema panics on an invalid schema; for package-level schemas.
func MustCompileSchema(doc interface{}) *Schema {
	s, err := CompileSchema(doc)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks a decoded document or raw JSON bytes.
func (s *Schema) Validate(doc interface{}) error {
	var loader gojsonschema.JSONLoader
	switch d := doc.(type) {
	case []byte:
		if !json.Valid(d) {
			return &SchemaError{Violations: []string{"(root): body is not valid JSON"}}
		}
		loader = gojsonschema.NewBytesLoader(d)
	case string:
		loader = gojsonschema.NewStringLoader(d)
	default:
		loader = gojsonschema.NewGoLoader(d)
	}

	result, err := s.schema.Validate(loader)
	if err != nil {
		return &SchemaError{Violations: []string{err.Error()}}
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		violations = append(violations, e.String())
	}
	return &SchemaError{Violations: violations}
}
