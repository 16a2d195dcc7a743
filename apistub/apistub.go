// Package apistub is an in-process fake of the AICE backend contract. The
// aice CLI serves it for local development and the SDK tests run against it;
// it maintains the same invariants the real backend enforces (at most one
// default payment method, remove-default and remove-last rejections, bearer
// auth with refreshable tokens).
package apistub

import (
	_ "embed"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/go-openapi/runtime/middleware"

	"github.com/salesaice/aice-go/billing"
	"github.com/salesaice/aice-go/dashboard"
	"github.com/salesaice/aice-go/session"
)

//go:embed openapi.yaml
var openapiSpec []byte

type account struct {
	user     session.User
	password string
}

// Stub holds the fake backend state. All state is in memory and guarded by
// a single mutex; the zero value is not usable, call New.
type Stub struct {
	logger *slog.Logger

	mu             sync.Mutex
	accounts       map[string]account                  // email -> account
	accessTokens   map[string]string                   // access token -> email
	refreshTokens  map[string]string                   // refresh token -> email
	paymentMethods map[string][]billing.PaymentMethod  // email -> collection
	cards          map[string]billing.CardDetails      // provider token -> card
	invoices       map[string][]billing.Invoice        // email -> invoices
	plans          map[string]billing.Plan             // email -> plan
	stats          map[string]dashboard.Stats          // email -> stats
	agents         []dashboard.Agent
	calls          map[string][]dashboard.CallRecord // email -> call history

	failRefresh  bool
	refreshCalls atomic.Int64
}

// Option configures the Stub.
type Option func(*Stub)

// WithLogger sets the structured logger for request events.
// If not set, a default JSON logger writing to stderr is used.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Stub) {
		s.logger = logger
	}
}

// New creates a stub seeded with a demo user, an admin, payment methods,
// invoices, and dashboard fixtures.
func New(opts ...Option) *Stub {
	s := &Stub{
		accounts:       make(map[string]account),
		accessTokens:   make(map[string]string),
		refreshTokens:  make(map[string]string),
		paymentMethods: make(map[string][]billing.PaymentMethod),
		cards:          make(map[string]billing.CardDetails),
		invoices:       make(map[string][]billing.Invoice),
		plans:          make(map[string]billing.Plan),
		stats:          make(map[string]dashboard.Stats),
		calls:          make(map[string][]dashboard.CallRecord),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	s.seed()
	return s
}

// Router returns a chi.Router with the full contract mounted.
func (s *Stub) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})

	r.Handle("/docs*", middleware.SwaggerUI(middleware.SwaggerUIOpts{
		SpecURL: "/openapi.yaml",
		Path:    "docs",
	}, nil))

	r.Handle("/redoc*", middleware.Redoc(middleware.RedocOpts{
		SpecURL: "/openapi.yaml",
		Path:    "redoc",
	}, nil))

	// Stand-in for the third-party payment provider's tokenization API.
	// Deliberately outside the bearer-auth group: the provider knows
	// nothing about AICE sessions.
	r.Post("/provider/tokenize/", s.tokenizeCard)

	r.Post("/auth/login/", s.login)
	r.Post("/auth/logout/", s.logout)
	r.Post("/auth/refresh/", s.refresh)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/accounts/user/data/", s.userData)

		r.Get("/payment-methods/", s.listPaymentMethods)
		r.Post("/payment-methods/", s.addPaymentMethod)
		r.Put("/payment-methods/{id}/", s.updatePaymentMethod)
		r.Delete("/payment-methods/{id}/", s.removePaymentMethod)

		r.Get("/billing/invoices/", s.listInvoices)
		r.Get("/billing/payment-method/", s.defaultPaymentMethod)
		r.Get("/billing/plan/", s.currentPlan)

		r.Get("/dashboard/stats/", s.dashboardStats)
		r.Get("/agents/", s.listAgents)
		r.Get("/dashboard/user/calls/", s.listCalls)
	})

	return r
}

// FailRefresh makes subsequent refresh calls return 401, driving clients
// into the forced-logout path.
func (s *Stub) FailRefresh(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failRefresh = fail
}

// RevokeAccessTokens invalidates every issued access token without touching
// refresh tokens, so the next authenticated request 401s and recovers via
// refresh.
func (s *Stub) RevokeAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessTokens = make(map[string]string)
}

// RefreshCalls reports how many refresh requests the stub has served.
func (s *Stub) RefreshCalls() int64 {
	return s.refreshCalls.Load()
}
