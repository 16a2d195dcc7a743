// Package storage provides the durable token slot abstraction used by the
// session store to survive process restarts.
package storage

import "errors"

// ErrNotFound is returned by Load when no token has been persisted.
var ErrNotFound = errors.New("token not found")

// TokenStore holds a single access token. The session store writes it on
// login and refresh and deletes it on logout or forced logout; it never holds
// more than one value at a time.
type TokenStore interface {
	// Load returns the persisted token, or ErrNotFound if the slot is empty.
	Load() (string, error)
	// Save overwrites the persisted token.
	Save(token string) error
	// Delete empties the slot. Deleting an already-empty slot is not an
	// error; logout must be idempotent.
	Delete() error
}
