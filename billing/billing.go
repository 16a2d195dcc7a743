package billing

import (
	"context"

	"github.com/salesaice/aice-go/transport"
)

// Client reads the billing resources that have no local mutation: invoices,
// the current plan, and the subscription's default payment method.
type Client struct {
	api *transport.Client
}

// NewClient creates a read-only billing client.
func NewClient(api *transport.Client) *Client {
	return &Client{api: api}
}

// Invoices fetches the invoice history, newest first as the server orders it.
func (c *Client) Invoices(ctx context.Context) ([]Invoice, error) {
	var invoices []Invoice
	if err := c.api.Get(ctx, "/billing/invoices/", &invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

// DefaultPaymentMethod fetches the payment method the subscription charges.
// Returns nil without error when none is configured.
func (c *Client) DefaultPaymentMethod(ctx context.Context) (*PaymentMethod, error) {
	var pm *PaymentMethod
	if err := c.api.Get(ctx, "/billing/payment-method/", &pm); err != nil {
		return nil, err
	}
	return pm, nil
}

// CurrentPlan fetches the active subscription plan.
func (c *Client) CurrentPlan(ctx context.Context) (*Plan, error) {
	var plan Plan
	if err := c.api.Get(ctx, "/billing/plan/", &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}
