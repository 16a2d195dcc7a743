// Package dashboard reads the call-center dashboard resources: summary
// stats, agents, and call history.
package dashboard

import (
	"context"
	"net/url"

	"github.com/salesaice/aice-go/transport"
)

// Agent statuses the backend reports.
const (
	AgentActive   = "active"
	AgentInactive = "inactive"
	AgentPaused   = "paused"
)

// Stats is the billing-cycle summary shown on the dashboard landing page.
type Stats struct {
	InboundCalls        int     `json:"inbound_calls"`
	OutboundCalls       int     `json:"outbound_calls"`
	TotalCallsThisCycle int     `json:"total_calls_this_cycle"`
	PlanName            string  `json:"plan_name"`
	PlanMinutesLimit    int     `json:"plan_minutes_limit"`
	PlanMinutesUsed     int     `json:"plan_minutes_used"`
	RenewalDate         string  `json:"renewal_date"`
	BillingCycleStart   string  `json:"billing_cycle_start"`
	AverageCallDuration float64 `json:"average_call_duration"`
	CallSuccessRate     float64 `json:"call_success_rate"`
}

// Agent is a call-center agent row.
type Agent struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Status   string `json:"status"`
	JoinedAt string `json:"joined_at"`
}

// CallRecord is one entry of the call history.
type CallRecord struct {
	ID              string `json:"id"`
	Direction       string `json:"direction"`
	Caller          string `json:"caller"`
	DurationSeconds int    `json:"duration_seconds"`
	Status          string `json:"status"`
	StartedAt       string `json:"started_at"`
}

// Client reads dashboard resources for the authenticated user.
type Client struct {
	api *transport.Client
}

// NewClient creates a dashboard client.
func NewClient(api *transport.Client) *Client {
	return &Client{api: api}
}

// Stats fetches the billing-cycle call summary.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	if err := c.api.Get(ctx, "/dashboard/stats/", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Agents fetches the agent roster in server order.
func (c *Client) Agents(ctx context.Context) ([]Agent, error) {
	var agents []Agent
	if err := c.api.Get(ctx, "/agents/", &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

// Calls fetches the call history, optionally filtered by status.
func (c *Client) Calls(ctx context.Context, status string) ([]CallRecord, error) {
	path := "/dashboard/user/calls/"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var calls []CallRecord
	if err := c.api.Get(ctx, path, &calls); err != nil {
		return nil, err
	}
	return calls, nil
}
