package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a single-document lookup matches nothing.
var ErrNotFound = errors.New("not found")

// Unique keys enforced by every adapter.
const (
	KeyPhlebotomistID = "phlebotomist_id"
	KeyInvoice        = "invoice"
	KeyEmail          = "email"
)

// DuplicateKeyError reports a unique index violation detected by the store.
type DuplicateKeyError struct {
	Key string
	Err error
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key %s: %v", e.Key, e.Err)
}

func (e *DuplicateKeyError) Unwrap() error { return e.Err }

// IsDuplicateKey reports whether err is a unique violation on key.
// An empty key matches any unique violation.
func IsDuplicateKey(err error, key string) bool {
	var de *DuplicateKeyError
	if !errors.As(err, &de) {
		return false
	}
	return key == "" || de.Key == key
}
