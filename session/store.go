// Package session owns the client-side authentication lifecycle: login,
// logout, forced logout on unrecoverable authorization failure, and the
// access token with its single durable copy. The store is the only writer of
// token state; the HTTP transport reads it through the Credentials capability
// the store implements.
package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/salesaice/aice-go/internal/util"
	"github.com/salesaice/aice-go/storage"
	"github.com/salesaice/aice-go/transport"
)

// Store holds the current user identity and token pair. It is safe for
// concurrent use and implements transport.Credentials.
type Store struct {
	api        *transport.Client
	tokens     storage.TokenStore
	logger     *slog.Logger
	httpClient *http.Client

	mu      sync.RWMutex
	user    *User
	access  string
	refresh string
	expired bool
}

var _ transport.Credentials = (*Store)(nil)

// Option configures the Store.
type Option func(*Store)

// WithHTTPClient sets the *http.Client used for the auth endpoints.
func WithHTTPClient(h *http.Client) Option {
	return func(s *Store) {
		s.httpClient = h
	}
}

// WithLogger sets the structured logger.
// If not set, a default JSON logger writing to stderr is used.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a session store talking to the auth endpoints at baseURL and
// persisting the access token in tokens.
func New(baseURL string, tokens storage.TokenStore, opts ...Option) *Store {
	s := &Store{tokens: tokens}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	apiOpts := []transport.Option{transport.WithLogger(s.logger)}
	if s.httpClient != nil {
		apiOpts = append(apiOpts, transport.WithHTTPClient(s.httpClient))
	}
	// The auth endpoints are called without credentials: login precedes a
	// session and refresh must not recurse into the refresh policy.
	s.api = transport.New(baseURL, nil, apiOpts...)
	return s
}

type tokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type loginResponse struct {
	Tokens *tokenPair `json:"tokens"`
	User   *User      `json:"user"`
	Status string     `json:"status"`
}

// Login authenticates against POST /auth/login/. On success the session
// state is replaced, the expired flag cleared, and the access token
// persisted. The returned user's role tells the caller where to navigate.
func (s *Store) Login(ctx context.Context, email, password string) (*User, error) {
	body := map[string]string{
		"email":    util.NormalizeEmail(email),
		"password": password,
	}
	var resp loginResponse
	if err := s.api.Post(ctx, "/auth/login/", body, &resp); err != nil {
		var apiErr *transport.APIError
		if errors.As(err, &apiErr) &&
			(apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusPaymentRequired) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// The backend signals bad credentials as a 200 with a status marker.
	if resp.Status == "402" {
		return nil, ErrInvalidCredentials
	}
	if resp.Tokens == nil || resp.Tokens.Access == "" || resp.User == nil {
		return nil, errors.New("login: malformed response")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.tokens.Save(resp.Tokens.Access); err != nil {
		return nil, err
	}
	s.user = resp.User
	s.access = resp.Tokens.Access
	s.refresh = resp.Tokens.Refresh
	s.expired = false
	s.logger.Info("logged in", "email", s.user.Email, "role", s.user.Role)

	u := *resp.User
	return &u, nil
}

// Logout tears the session down. The server call is best effort: its failure
// is deliberately ignored because local teardown must always succeed. Logout
// is idempotent and always returns nil.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.RLock()
	refresh := s.refresh
	s.mu.RUnlock()

	if err := s.api.Post(ctx, "/auth/logout/", map[string]string{"refresh": refresh}, nil); err != nil {
		s.logger.Debug("logout server call failed, clearing session anyway", "error", err)
	}
	s.clear(false)
	return nil
}

// ForceLogout tears the session down after refresh failed or a refreshed
// token was rejected. Unlike Logout it leaves the expired flag set so the
// caller can tell a dead session apart from a deliberate sign-out.
func (s *Store) ForceLogout() {
	s.logger.Warn("session expired, forcing logout")
	s.clear(true)
}

func (s *Store) clear(expired bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.tokens.Delete(); err != nil {
		s.logger.Warn("failed to delete persisted token", "error", err)
	}
	s.user = nil
	s.access = ""
	s.refresh = ""
	if expired {
		s.expired = true
	}
}

// AccessToken returns the current bearer token: in-memory state first, then
// the persisted copy, so a process restart keeps the session alive while the
// persisted token remains valid. A persisted token that is already past its
// expiry is discarded instead of returned.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	access := s.access
	s.mu.RUnlock()
	if access != "" {
		return access
	}

	persisted, err := s.tokens.Load()
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("failed to load persisted token", "error", err)
		}
		return ""
	}
	if tokenExpired(persisted, time.Now()) {
		s.logger.Debug("persisted token expired, discarding")
		if err := s.tokens.Delete(); err != nil {
			s.logger.Warn("failed to delete expired token", "error", err)
		}
		return ""
	}
	return persisted
}

// RefreshAccessToken exchanges the refresh token for a new access token via
// POST /auth/refresh/ and persists it. Called by the transport, serialized
// behind its singleflight group.
func (s *Store) RefreshAccessToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	refresh := s.refresh
	s.mu.RUnlock()
	if refresh == "" {
		return "", ErrNotAuthenticated
	}

	var resp tokenPair
	if err := s.api.Post(ctx, "/auth/refresh/", map[string]string{"refresh": refresh}, &resp); err != nil {
		return "", err
	}
	if resp.Access == "" {
		return "", errors.New("refresh: malformed response")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.tokens.Save(resp.Access); err != nil {
		return "", err
	}
	s.access = resp.Access
	s.logger.Debug("access token refreshed")
	return resp.Access, nil
}

// User returns a copy of the logged-in user, or nil.
func (s *Store) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Expired reports whether the session ended in a forced logout. Only a fresh
// successful login resets it.
func (s *Store) Expired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expired
}

// LoggedIn reports whether a usable access token exists in memory or in the
// persisted slot.
func (s *Store) LoggedIn() bool {
	return s.AccessToken() != ""
}

// tokenExpired inspects a JWT's exp claim without verifying the signature;
// the client holds no signing key. Opaque tokens and tokens without an exp
// claim are assumed live and left to the server to reject.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
