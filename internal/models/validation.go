package models

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError is one field that failed validation.
type ValidationError struct {
	Field string `json:"field"`
	Cause error  `json:"-"`
}

func (v ValidationError) Error() string {
	if v.Field == "" {
		return v.Cause.Error()
	}
	return fmt.Sprintf("%s: %v", v.Field, v.Cause)
}

// ValidationErrors collects every failed field of a record.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// Add records a failure for field. Nil errors are ignored.
func (v *ValidationErrors) Add(field string, err error) {
	if err == nil {
		return
	}
	v.Errors = append(v.Errors, ValidationError{Field: field, Cause: err})
}

// Err returns nil when nothing failed.
func (v *ValidationErrors) Err() error {
	if v == nil || len(v.Errors) == 0 {
		return nil
	}
	return v
}

// Error implements error.
func (v *ValidationErrors) Error() string {
	if v == nil || len(v.Errors) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		parts[i] = err.Error()
	}
	return strings.Join(parts, "; ")
}

// Is lets errors.Is match any of the collected causes.
func (v *ValidationErrors) Is(target error) bool {
	if v == nil {
		return false
	}
	for _, err := range v.Errors {
		if errors.Is(err.Cause, target) {
			return true
		}
	}
	return false
}
