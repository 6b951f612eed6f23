package services

import (
	"errors"
	"fmt"
)

// ValidationError represents a rejected input field
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}

// IsValidationError checks if an error is a validation error (including wrapped errors)
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// ReferenceNotFoundError reports a cross-record lookup that matched nothing.
// The write it guarded was not performed.
type ReferenceNotFoundError struct {
	Field string
	Value string
}

func (e ReferenceNotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Field, e.Value)
}

// NewReferenceNotFoundError constructs ReferenceNotFoundError
func NewReferenceNotFoundError(field, value string) ReferenceNotFoundError {
	return ReferenceNotFoundError{Field: field, Value: value}
}

// IsReferenceNotFoundError checks if error is ReferenceNotFoundError
func IsReferenceNotFoundError(err error) bool {
	var re ReferenceNotFoundError
	return errors.As(err, &re)
}

// DuplicateKeyError is a unique constraint violation with a caller-facing message.
type DuplicateKeyError struct {
	Field   string
	Message string
}

func (e DuplicateKeyError) Error() string {
	return e.Message
}

// NewDuplicateKeyError constructs DuplicateKeyError
func NewDuplicateKeyError(field, message string) DuplicateKeyError {
	return DuplicateKeyError{Field: field, Message: message}
}

// IsDuplicateKeyError checks if error is DuplicateKeyError
func IsDuplicateKeyError(err error) bool {
	var de DuplicateKeyError
	return errors.As(err, &de)
}

// ErrInvalidCredentials is returned for any login mismatch. Unknown identity
// and wrong password are indistinguishable.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Caller-facing duplicate messages.
const (
	MsgDuplicateInvoice      = "invoice must be unique"
	MsgDuplicatePhlebotomist = "phlebotomist id must be unique"
	MsgDuplicateEmail        = "email already registered"
)
