package service

import (
	"errors"
	"strings"
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrConflict       = errors.New("conflict")
	ErrSearchDisabled = errors.New("search is not configured")
)

// FieldError is one field-level validation message, reported to the
// caller as a structured list. No state is mutated when these are
// returned.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func validationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}
