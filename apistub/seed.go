package apistub

import (
	"time"

	"github.com/salesaice/aice-go/billing"
	"github.com/salesaice/aice-go/dashboard"
	"github.com/salesaice/aice-go/session"
)

const (
	// DemoEmail and DemoPassword identify the seeded regular user.
	DemoEmail    = "demo@aice.io"
	DemoPassword = "demo-password"
	// AdminEmail and AdminPassword identify the seeded admin.
	AdminEmail    = "admin@aice.io"
	AdminPassword = "admin-password"
)

func (s *Stub) seed() {
	s.accounts[DemoEmail] = account{
		user:     session.User{Name: "Demo User", Email: DemoEmail, Role: session.RoleUser},
		password: DemoPassword,
	}
	s.accounts[AdminEmail] = account{
		user:     session.User{Name: "Site Admin", Email: AdminEmail, Role: session.RoleAdmin},
		password: AdminPassword,
	}

	s.paymentMethods[DemoEmail] = []billing.PaymentMethod{
		{
			ID:          "pm_seed_visa",
			DisplayName: "Visa •••• 4242",
			CardType:    "visa",
			LastFour:    "4242",
			ExpMonth:    12,
			ExpYear:     2030,
			Expires:     "12/2030",
			IsDefault:   true,
		},
	}

	s.invoices[DemoEmail] = []billing.Invoice{
		{ID: "inv_003", Date: "2025-09-01", Amount: 29.99, Status: billing.InvoicePaid},
		{ID: "inv_002", Date: "2025-08-01", Amount: 29.99, Status: billing.InvoicePaid},
		{ID: "inv_001", Date: "2025-07-01", Amount: 29.99, Status: billing.InvoicePaid},
	}

	s.plans[DemoEmail] = billing.Plan{
		Name:         "Pro",
		PriceMonthly: 29.99,
		NextBilling:  "2025-10-01",
	}

	s.stats[DemoEmail] = dashboard.Stats{
		InboundCalls:        128,
		OutboundCalls:       96,
		TotalCallsThisCycle: 224,
		PlanName:            "Pro – 2,000 min",
		PlanMinutesLimit:    2000,
		PlanMinutesUsed:     742,
		RenewalDate:         time.Now().AddDate(0, 0, 12).UTC().Format(time.RFC3339),
		BillingCycleStart:   time.Now().AddDate(0, 0, -18).UTC().Format(time.RFC3339),
		AverageCallDuration: 3.2,
		CallSuccessRate:     94.5,
	}

	s.agents = []dashboard.Agent{
		{ID: "a1", Name: "Sara Khan", Email: "sara@example.com", Status: dashboard.AgentActive, JoinedAt: time.Now().UTC().Format(time.RFC3339)},
		{ID: "a2", Name: "Omar Ali", Email: "omar@example.com", Status: dashboard.AgentPaused, JoinedAt: time.Now().AddDate(0, -1, 0).UTC().Format(time.RFC3339)},
		{ID: "a3", Name: "Ayesha Iqbal", Email: "ayesha@example.com", Status: dashboard.AgentInactive, JoinedAt: time.Now().AddDate(0, -3, 0).UTC().Format(time.RFC3339)},
	}

	s.calls[DemoEmail] = []dashboard.CallRecord{
		{ID: "c1", Direction: "inbound", Caller: "+15550100", DurationSeconds: 212, Status: "completed", StartedAt: time.Now().Add(-2 * time.Hour).UTC().Format(time.RFC3339)},
		{ID: "c2", Direction: "outbound", Caller: "+15550134", DurationSeconds: 47, Status: "completed", StartedAt: time.Now().Add(-5 * time.Hour).UTC().Format(time.RFC3339)},
		{ID: "c3", Direction: "inbound", Caller: "+15550177", DurationSeconds: 0, Status: "missed", StartedAt: time.Now().Add(-26 * time.Hour).UTC().Format(time.RFC3339)},
	}
}
