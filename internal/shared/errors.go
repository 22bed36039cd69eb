package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates no active member matches the
	// submitted identifier and secret.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountInactive indicates the member matched but is deactivated.
	// The HTTP boundary reports it identically to ErrInvalidCredentials so
	// responses never reveal whether an email exists; the distinction is
	// kept for audit logging only.
	ErrAccountInactive = errors.New("account inactive")
)
