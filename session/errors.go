package session

import "errors"

var (
	// ErrInvalidCredentials indicates the auth endpoint rejected the
	// email/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotAuthenticated indicates an operation that needs a live session
	// was called while logged out.
	ErrNotAuthenticated = errors.New("not authenticated")
)
