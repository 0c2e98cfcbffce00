package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure. The message stays
	// generic so a caller cannot tell which field was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrNoCredentials occurs when no bearer token was presented.
	ErrNoCredentials = errors.New("authentication required")
)
