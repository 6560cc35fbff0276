// Package apperr defines the error kinds shared by services and handlers.
package apperr

import (
	"errors"
	"strings"
)

// ValidationError reports a bad or missing request field. It is a caller
// error and is never worth retrying.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validation creates a ValidationError for field.
func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ConfigurationError reports missing or malformed operator configuration.
type ConfigurationError struct {
	Problems []string
}

func (e *ConfigurationError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

// Configuration creates a ConfigurationError from one or more problems.
func Configuration(problems ...string) error {
	return &ConfigurationError{Problems: problems}
}

// StoreUnavailableError wraps a failure reported by the object store, the
// signer or the grant ledger.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}

// StoreUnavailable wraps err as a StoreUnavailableError. A nil err stays nil.
func StoreUnavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreUnavailableError{Op: op, Err: err}
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsConfiguration reports whether err is, or wraps, a ConfigurationError.
func IsConfiguration(err error) bool {
	var c *ConfigurationError
	return errors.As(err, &c)
}

// IsStoreUnavailable reports whether err is, or wraps, a StoreUnavailableError.
func IsStoreUnavailable(err error) bool {
	var s *StoreUnavailableError
	return errors.As(err, &s)
}
