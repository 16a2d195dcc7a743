// Package billing contains the payment-method manager and the read-only
// billing resources (invoices, plan, default payment method).
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/salesaice/aice-go/transport"
)

// Manager performs the payment-method resource operations. It keeps a
// last-known snapshot of the collection that is only ever replaced wholesale
// from a list fetch; overlapping mutations are reconciled by re-listing, and
// the server response stays the source of truth.
type Manager struct {
	api       *transport.Client
	tokenizer Tokenizer
	logger    *slog.Logger

	mu    sync.RWMutex
	known []PaymentMethod
}

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a payment-method manager over an authenticated client.
// tokenizer handles the first phase of Add; it may be nil when Add is unused.
func NewManager(api *transport.Client, tokenizer Tokenizer, opts ...ManagerOption) *Manager {
	m := &Manager{api: api, tokenizer: tokenizer}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	return m
}

type listResponse struct {
	Success        bool            `json:"success"`
	PaymentMethods []PaymentMethod `json:"payment_methods"`
}

// List fetches the full collection. Server ordering is preserved and the
// local snapshot replaced with the result.
func (m *Manager) List(ctx context.Context) ([]PaymentMethod, error) {
	var resp listResponse
	if err := m.api.Get(ctx, "/payment-methods/", &resp); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.known = append([]PaymentMethod(nil), resp.PaymentMethods...)
	m.mu.Unlock()
	return resp.PaymentMethods, nil
}

type addRequest struct {
	PaymentMethodID string `json:"payment_method_id"`
	SetAsDefault    bool   `json:"set_as_default"`
}

type addResponse struct {
	Success       bool           `json:"success"`
	PaymentMethod *PaymentMethod `json:"payment_method"`
}

// Add stores a new payment method in two phases: the card is tokenized with
// the external provider first, then the opaque reference is submitted to the
// backend. A tokenization failure short-circuits with no backend call, so
// either phase's failure leaves the collection unchanged.
func (m *Manager) Add(ctx context.Context, card CardDetails, setDefault bool) (*PaymentMethod, error) {
	if m.tokenizer == nil {
		return nil, errors.New("no tokenizer configured")
	}
	ref, err := m.tokenizer.Tokenize(ctx, card)
	if err != nil {
		m.logger.Warn("card tokenization failed", "error", err)
		return nil, err
	}
	return m.AddToken(ctx, ref, setDefault)
}

// AddToken submits an already-tokenized payment-method reference, for
// callers that run provider tokenization themselves (the original front end
// does, in the browser).
func (m *Manager) AddToken(ctx context.Context, providerToken string, setDefault bool) (*PaymentMethod, error) {
	var resp addResponse
	err := m.api.Post(ctx, "/payment-methods/", addRequest{
		PaymentMethodID: providerToken,
		SetAsDefault:    setDefault,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.PaymentMethod == nil {
		return nil, fmt.Errorf("add payment method: malformed response")
	}
	m.logger.Info("payment method added", "id", resp.PaymentMethod.ID, "default", resp.PaymentMethod.IsDefault)
	return resp.PaymentMethod, nil
}

type updateRequest struct {
	SetAsDefault bool `json:"set_as_default"`
}

type statusResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// SetDefault marks one payment method as the default. The at-most-one-
// default invariant is owned by the server; callers re-list and replace
// local state rather than patching it.
func (m *Manager) SetDefault(ctx context.Context, id string) error {
	var resp statusResponse
	err := m.api.Put(ctx, "/payment-methods/"+id+"/", updateRequest{SetAsDefault: true}, &resp)
	if err != nil {
		return mapNotFound(err)
	}
	m.logger.Info("default payment method changed", "id", id)
	return nil
}

// Remove deletes a payment method. Removing the current default is rejected
// locally with ErrRemoveDefault before any request is issued; the caller is
// expected to re-list afterwards.
func (m *Manager) Remove(ctx context.Context, id string) error {
	m.mu.RLock()
	for _, pm := range m.known {
		if pm.ID == id && pm.IsDefault {
			m.mu.RUnlock()
			return ErrRemoveDefault
		}
	}
	m.mu.RUnlock()

	var resp statusResponse
	if err := m.api.Delete(ctx, "/payment-methods/"+id+"/", &resp); err != nil {
		return mapNotFound(err)
	}
	m.logger.Info("payment method removed", "id", id)
	return nil
}

func mapNotFound(err error) error {
	var apiErr *transport.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", apiErr.Message, ErrNotFound)
	}
	return err
}
