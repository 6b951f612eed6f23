package auth

import "errors"

var (
	// ErrUnauthorized is returned when a request carries no valid session.
	ErrUnauthorized = errors.New("unauthorized access")

	// ErrForbidden is returned when a valid session may not act on the target.
	ErrForbidden = errors.New("forbidden access")
)
