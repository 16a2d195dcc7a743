package billing

import (
	"errors"
	"fmt"
)

var (
	// ErrRemoveDefault is returned by Remove when the target is the current
	// default payment method. Detected locally; no request is issued.
	ErrRemoveDefault = errors.New("cannot remove default payment method")
	// ErrNotFound indicates the backend knows no payment method with the
	// given id.
	ErrNotFound = errors.New("payment method not found")
)

// TokenizeError reports a card rejected by the payment provider during the
// tokenization phase (declined, invalid number, expired).
type TokenizeError struct {
	Reason string
}

func (e *TokenizeError) Error() string {
	return fmt.Sprintf("card tokenization failed: %s", e.Reason)
}
