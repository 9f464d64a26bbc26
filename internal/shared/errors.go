package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenInvalid is returned for missing or expired session tokens. The
	// message text is a wire contract: the front end matches it verbatim to
	// force a logout.
	ErrTokenInvalid = errors.New("Token is Invalid")
)
