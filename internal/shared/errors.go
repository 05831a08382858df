package shared

import "errors"

var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates a request failed domain validation.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized indicates a request without a valid session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates the caller lacks the required privileges.
	ErrForbidden = errors.New("forbidden")
	// ErrNoContent indicates an empty but successful response.
	ErrNoContent = errors.New("no content")
)
