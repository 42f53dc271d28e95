// Package common defines the error taxonomy and constants shared by the
// storage, service and transport layers of the CMIYC accounts server.
// Callers should use errors.Is / errors.As to match these values.
package common

import (
	"errors"
	"strings"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// ErrConfiguration is returned when the server lacks a required setting,
	// such as the token signing secret.
	ErrConfiguration = errors.New("configuration error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)

// Violation is a single failed input rule.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violated rule of a request, not only the
// first one. errors.Is(err, ErrorValidation) reports true for it.
type ValidationError struct {
	Details []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		msgs = append(msgs, d.Field+": "+d.Message)
	}
	return "validation error: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrorValidation
}

// NewValidationError returns nil when there are no violations, so callers
// can write `if err := NewValidationError(v); err != nil`.
func NewValidationError(details []Violation) error {
	if len(details) == 0 {
		return nil
	}
	return &ValidationError{Details: details}
}

// ReasonError pairs a sentinel with a caller-facing reason, e.g.
// ErrorUnauthorized with "incorrect password".
type ReasonError struct {
	Err    error
	Reason string
}

func (e *ReasonError) Error() string { return e.Reason }

func (e *ReasonError) Unwrap() error { return e.Err }

// WithReason wraps err so that errors.Is still matches it while the
// transport layer can surface reason verbatim.
func WithReason(err error, reason string) error {
	return &ReasonError{Err: err, Reason: reason}
}
