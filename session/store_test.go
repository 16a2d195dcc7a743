package session_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesaice/aice-go/apistub"
	"github.com/salesaice/aice-go/session"
	"github.com/salesaice/aice-go/storage"
	"github.com/salesaice/aice-go/storage/memory"
)

type discard struct{}

func (*discard) Write(p []byte) (int, error) { return len(p), nil }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&discard{}, nil))
}

func setupStub(t *testing.T) *httptest.Server {
	t.Helper()
	stub := apistub.New(apistub.WithLogger(quietLogger()))
	srv := httptest.NewServer(stub.Router())
	t.Cleanup(srv.Close)
	return srv
}

func newStore(t *testing.T, baseURL string, tokens storage.TokenStore) *session.Store {
	t.Helper()
	return session.New(baseURL, tokens, session.WithLogger(quietLogger()))
}

func TestLoginSuccess(t *testing.T) {
	srv := setupStub(t)
	tokens := memory.NewStore()
	s := newStore(t, srv.URL, tokens)

	user, err := s.Login(context.Background(), apistub.DemoEmail, apistub.DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, apistub.DemoEmail, user.Email)
	assert.Equal(t, session.RoleUser, user.Role)
	assert.Equal(t, "/dashboard", user.LandingRoute())
	assert.False(t, s.Expired())

	persisted, err := tokens.Load()
	require.NoError(t, err)
	assert.Equal(t, s.AccessToken(), persisted)
}

func TestLoginNormalizesEmail(t *testing.T) {
	srv := setupStub(t)
	s := newStore(t, srv.URL, memory.NewStore())

	user, err := s.Login(context.Background(), "  Demo@AICE.io ", apistub.DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, apistub.DemoEmail, user.Email)
}

func TestLoginAdminLandingRoute(t *testing.T) {
	srv := setupStub(t)
	s := newStore(t, srv.URL, memory.NewStore())

	user, err := s.Login(context.Background(), apistub.AdminEmail, apistub.AdminPassword)
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())
	assert.Equal(t, "/admin/dashboard", user.LandingRoute())
}

func TestLoginInvalidCredentials(t *testing.T) {
	srv := setupStub(t)
	tokens := memory.NewStore()
	s := newStore(t, srv.URL, tokens)

	_, err := s.Login(context.Background(), "a@b.com", "wrong")
	require.ErrorIs(t, err, session.ErrInvalidCredentials)
	assert.Nil(t, s.User())
	assert.Empty(t, s.AccessToken())

	_, err = tokens.Load()
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLoginLogoutRoundTrip(t *testing.T) {
	srv := setupStub(t)
	tokens := memory.NewStore()
	s := newStore(t, srv.URL, tokens)

	_, err := s.Login(context.Background(), apistub.DemoEmail, apistub.DemoPassword)
	require.NoError(t, err)

	require.NoError(t, s.Logout(context.Background()))
	assert.Nil(t, s.User())
	assert.Empty(t, s.AccessToken())
	assert.False(t, s.Expired())
	_, err = tokens.Load()
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Logging out again performs the same teardown with no error.
	require.NoError(t, s.Logout(context.Background()))
}

func TestLogoutIgnoresServerFailure(t *testing.T) {
	srv := setupStub(t)
	tokens := memory.NewStore()
	s := newStore(t, srv.URL, tokens)

	_, err := s.Login(context.Background(), apistub.DemoEmail, apistub.DemoPassword)
	require.NoError(t, err)

	// Kill the server; the teardown must still succeed locally.
	srv.Close()
	require.NoError(t, s.Logout(context.Background()))
	assert.Empty(t, s.AccessToken())
}

func TestAccessTokenSurvivesRestart(t *testing.T) {
	srv := setupStub(t)
	tokens := memory.NewStore()
	s := newStore(t, srv.URL, tokens)

	_, err := s.Login(context.Background(), apistub.DemoEmail, apistub.DemoPassword)
	require.NoError(t, err)
	token := s.AccessToken()

	// A new store over the same durable slot models a process restart.
	restarted := newStore(t, srv.URL, tokens)
	assert.Equal(t, token, restarted.AccessToken())
	assert.True(t, restarted.LoggedIn())
}

func TestExpiredPersistedTokenDiscarded(t *testing.T) {
	srv := setupStub(t)
	tokens := memory.NewStore()

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := expired.SignedString([]byte("test-key"))
	require.NoError(t, err)
	require.NoError(t, tokens.Save(signed))

	s := newStore(t, srv.URL, tokens)
	assert.Empty(t, s.AccessToken())
	assert.False(t, s.LoggedIn())

	_, err = tokens.Load()
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestOpaquePersistedTokenKept(t *testing.T) {
	srv := setupStub(t)
	tokens := memory.NewStore()
	require.NoError(t, tokens.Save("acc-opaque-token"))

	s := newStore(t, srv.URL, tokens)
	assert.Equal(t, "acc-opaque-token", s.AccessToken())
}

func TestForceLogoutSetsExpiredUntilNextLogin(t *testing.T) {
	srv := setupStub(t)
	tokens := memory.NewStore()
	s := newStore(t, srv.URL, tokens)

	_, err := s.Login(context.Background(), apistub.DemoEmail, apistub.DemoPassword)
	require.NoError(t, err)

	s.ForceLogout()
	assert.True(t, s.Expired())
	assert.Nil(t, s.User())
	assert.Empty(t, s.AccessToken())
	_, err = tokens.Load()
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Only a fresh successful login resets the flag.
	_, err = s.Login(context.Background(), apistub.DemoEmail, apistub.DemoPassword)
	require.NoError(t, err)
	assert.False(t, s.Expired())
}

func TestRefreshAccessToken(t *testing.T) {
	srv := setupStub(t)
	tokens := memory.NewStore()
	s := newStore(t, srv.URL, tokens)

	_, err := s.Login(context.Background(), apistub.DemoEmail, apistub.DemoPassword)
	require.NoError(t, err)
	before := s.AccessToken()

	after, err := s.RefreshAccessToken(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
	assert.Equal(t, after, s.AccessToken())

	persisted, err := tokens.Load()
	require.NoError(t, err)
	assert.Equal(t, after, persisted)
}

func TestRefreshWithoutSession(t *testing.T) {
	srv := setupStub(t)
	s := newStore(t, srv.URL, memory.NewStore())

	_, err := s.RefreshAccessToken(context.Background())
	assert.True(t, errors.Is(err, session.ErrNotAuthenticated))
}
