package domain

import "errors"

// Sentinel errors let the HTTP layer map core failures to status codes
// without leaking internal detail. The message on each is the exact string
// returned to the caller.
var (
	// 401
	ErrUnauthenticated = errors.New("authentication required")

	// 403
	ErrForbidden = errors.New("forbidden")

	// 404
	ErrNotFound = errors.New("not found")

	// 400
	ErrInvalidInput  = errors.New("invalid input")
	ErrEmailTaken    = errors.New("email already registered")
	ErrInvalidStatus = errors.New("invalid status value")
	ErrNotPending    = errors.New("request is no longer pending")
	ErrNotInProgress = errors.New("request is not in progress")
)
