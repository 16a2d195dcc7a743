package billing_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesaice/aice-go/apistub"
	"github.com/salesaice/aice-go/billing"
	"github.com/salesaice/aice-go/session"
	"github.com/salesaice/aice-go/storage/memory"
	"github.com/salesaice/aice-go/transport"
)

type discard struct{}

func (*discard) Write(p []byte) (int, error) { return len(p), nil }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&discard{}, nil))
}

// setupManager boots a stub, logs the demo user in, and returns a manager
// wired with the stub's in-process tokenizer.
func setupManager(t *testing.T) (*apistub.Stub, *billing.Manager) {
	t.Helper()
	stub := apistub.New(apistub.WithLogger(quietLogger()))
	srv := httptest.NewServer(stub.Router())
	t.Cleanup(srv.Close)

	sess := session.New(srv.URL, memory.NewStore(), session.WithLogger(quietLogger()))
	_, err := sess.Login(context.Background(), apistub.DemoEmail, apistub.DemoPassword)
	require.NoError(t, err)

	api := transport.New(srv.URL, sess, transport.WithLogger(quietLogger()))
	return stub, billing.NewManager(api, stub.Tokenizer(), billing.WithLogger(quietLogger()))
}

func TestListReturnsSeededCollection(t *testing.T) {
	_, m := setupManager(t)

	pms, err := m.List(context.Background())
	require.NoError(t, err)
	require.Len(t, pms, 1)
	assert.Equal(t, "pm_seed_visa", pms[0].ID)
	assert.True(t, pms[0].IsDefault)
}

func TestAddThenSetDefault(t *testing.T) {
	_, m := setupManager(t)

	added, err := m.Add(context.Background(), billing.CardDetails{
		Number:   "5555555555554444",
		ExpMonth: 6,
		ExpYear:  2031,
		CVC:      "123",
	}, false)
	require.NoError(t, err)
	assert.False(t, added.IsDefault)
	assert.Equal(t, "4444", added.LastFour)
	assert.Equal(t, "mastercard", added.CardType)
	assert.Equal(t, "Mastercard •••• 4444", added.DisplayName)

	require.NoError(t, m.SetDefault(context.Background(), added.ID))

	pms, err := m.List(context.Background())
	require.NoError(t, err)
	require.Len(t, pms, 2)

	// Server ordering is preserved: the seeded method stays first.
	assert.Equal(t, "pm_seed_visa", pms[0].ID)
	assert.Equal(t, added.ID, pms[1].ID)

	defaults := 0
	for _, pm := range pms {
		if pm.IsDefault {
			defaults++
			assert.Equal(t, added.ID, pm.ID)
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestAddAsDefaultDemotesPrevious(t *testing.T) {
	_, m := setupManager(t)

	added, err := m.Add(context.Background(), billing.CardDetails{
		Number:   "378282246310005",
		ExpMonth: 1,
		ExpYear:  2032,
		CVC:      "1234",
	}, true)
	require.NoError(t, err)
	assert.True(t, added.IsDefault)

	pms, err := m.List(context.Background())
	require.NoError(t, err)
	for _, pm := range pms {
		if pm.ID != added.ID {
			assert.False(t, pm.IsDefault)
		}
	}
}

func TestAddDeclinedCardSkipsBackend(t *testing.T) {
	var backendCalls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		backendCalls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	failing := billing.TokenizerFunc(func(ctx context.Context, card billing.CardDetails) (string, error) {
		return "", &billing.TokenizeError{Reason: "card declined"}
	})
	api := transport.New(srv.URL, nil, transport.WithLogger(quietLogger()))
	m := billing.NewManager(api, failing, billing.WithLogger(quietLogger()))

	_, err := m.Add(context.Background(), billing.CardDetails{Number: "4242"}, false)

	var tokErr *billing.TokenizeError
	require.ErrorAs(t, err, &tokErr)
	assert.Equal(t, "card declined", tokErr.Reason)
	assert.Zero(t, backendCalls.Load(), "a tokenization failure must not reach the backend")
}

func TestRemoveDefaultRejectedLocally(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"payment_methods": []billing.PaymentMethod{
				{ID: "pm_1", IsDefault: true},
				{ID: "pm_2"},
			},
		})
	}))
	t.Cleanup(srv.Close)

	api := transport.New(srv.URL, nil, transport.WithLogger(quietLogger()))
	m := billing.NewManager(api, nil, billing.WithLogger(quietLogger()))

	_, err := m.List(context.Background())
	require.NoError(t, err)
	listed := requests.Load()

	err = m.Remove(context.Background(), "pm_1")
	require.ErrorIs(t, err, billing.ErrRemoveDefault)
	assert.Equal(t, listed, requests.Load(), "rejecting a default removal must not issue a request")
}

func TestRemoveNonDefault(t *testing.T) {
	_, m := setupManager(t)

	added, err := m.Add(context.Background(), billing.CardDetails{
		Number:   "4012888888881881",
		ExpMonth: 9,
		ExpYear:  2030,
		CVC:      "321",
	}, false)
	require.NoError(t, err)

	_, err = m.List(context.Background())
	require.NoError(t, err)

	require.NoError(t, m.Remove(context.Background(), added.ID))

	pms, err := m.List(context.Background())
	require.NoError(t, err)
	require.Len(t, pms, 1)
	assert.Equal(t, "pm_seed_visa", pms[0].ID)
}

func TestRemoveDefaultServerGuard(t *testing.T) {
	// Without a prior List the snapshot is empty, so the local guard cannot
	// fire and the stub's own rejection comes back as an APIError.
	_, m := setupManager(t)

	err := m.Remove(context.Background(), "pm_seed_visa")
	require.Error(t, err)
	var apiErr *transport.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestSetDefaultUnknownID(t *testing.T) {
	_, m := setupManager(t)

	err := m.SetDefault(context.Background(), "pm_does_not_exist")
	assert.ErrorIs(t, err, billing.ErrNotFound)
}

func TestRemoveUnknownID(t *testing.T) {
	_, m := setupManager(t)

	err := m.Remove(context.Background(), "pm_does_not_exist")
	assert.ErrorIs(t, err, billing.ErrNotFound)
}

func TestAddWithoutTokenizer(t *testing.T) {
	api := transport.New("http://127.0.0.1:0", nil, transport.WithLogger(quietLogger()))
	m := billing.NewManager(api, nil, billing.WithLogger(quietLogger()))

	_, err := m.Add(context.Background(), billing.CardDetails{}, false)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, billing.ErrNotFound))
}
