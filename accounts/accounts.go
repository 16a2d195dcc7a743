// Package accounts reads the current user's account data.
package accounts

import (
	"context"

	"github.com/salesaice/aice-go/session"
	"github.com/salesaice/aice-go/transport"
)

// Client reads account resources for the authenticated user.
type Client struct {
	api *transport.Client
}

// NewClient creates an accounts client.
func NewClient(api *transport.Client) *Client {
	return &Client{api: api}
}

// UserData fetches the logged-in user's identity from
// GET /accounts/user/data/. The original front end calls this on every
// session change to rehydrate the user object behind a bare token.
func (c *Client) UserData(ctx context.Context) (*session.User, error) {
	var u session.User
	if err := c.api.Get(ctx, "/accounts/user/data/", &u); err != nil {
		return nil, err
	}
	return &u, nil
}
