package application

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports required-field or shape failures of a use case
// input. It is always recoverable by resubmitting corrected input and is
// never produced by a repository.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// validate collects missing required fields into a single ValidationError.
type validate struct {
	fields map[string]string
}

func (v *validate) require(field, value string) {
	if strings.TrimSpace(value) != "" {
		return
	}
	if v.fields == nil {
		v.fields = map[string]string{}
	}
	v.fields[field] = "is required"
}

func (v *validate) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}
