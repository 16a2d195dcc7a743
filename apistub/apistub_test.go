package apistub_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesaice/aice-go/accounts"
	"github.com/salesaice/aice-go/apistub"
	"github.com/salesaice/aice-go/billing"
	"github.com/salesaice/aice-go/dashboard"
	"github.com/salesaice/aice-go/session"
	"github.com/salesaice/aice-go/storage/memory"
	"github.com/salesaice/aice-go/transport"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// client bundles a logged-in SDK stack against a fresh stub.
type client struct {
	stub *apistub.Stub
	sess *session.Store
	api  *transport.Client
}

func setup(t *testing.T) *client {
	t.Helper()
	stub := apistub.New(apistub.WithLogger(quietLogger()))
	srv := httptest.NewServer(stub.Router())
	t.Cleanup(srv.Close)

	sess := session.New(srv.URL, memory.NewStore(), session.WithLogger(quietLogger()))
	_, err := sess.Login(context.Background(), apistub.DemoEmail, apistub.DemoPassword)
	require.NoError(t, err)

	api := transport.New(srv.URL, sess, transport.WithLogger(quietLogger()))
	return &client{stub: stub, sess: sess, api: api}
}

func TestRevokedTokenRecoversViaRefresh(t *testing.T) {
	c := setup(t)
	acc := accounts.NewClient(c.api)

	// Warm request with the original token.
	_, err := acc.UserData(context.Background())
	require.NoError(t, err)

	c.stub.RevokeAccessTokens()

	// The 401 is absorbed by a single refresh and retry.
	user, err := acc.UserData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, apistub.DemoEmail, user.Email)
	assert.EqualValues(t, 1, c.stub.RefreshCalls())
	assert.False(t, c.sess.Expired())
}

func TestRefreshFailureForcesLogout(t *testing.T) {
	c := setup(t)
	acc := accounts.NewClient(c.api)

	c.stub.RevokeAccessTokens()
	c.stub.FailRefresh(true)

	_, err := acc.UserData(context.Background())
	require.ErrorIs(t, err, transport.ErrUnauthorized)
	assert.True(t, c.sess.Expired())
	assert.False(t, c.sess.LoggedIn())
}

func TestPaymentMethodLifecycle(t *testing.T) {
	c := setup(t)
	pm := billing.NewManager(c.api, c.stub.Tokenizer(), billing.WithLogger(quietLogger()))

	added, err := pm.Add(context.Background(), billing.CardDetails{
		Number:   "5200828282828210",
		ExpMonth: 3,
		ExpYear:  2031,
		CVC:      "456",
	}, false)
	require.NoError(t, err)

	require.NoError(t, pm.SetDefault(context.Background(), added.ID))
	require.NoError(t, pm.Remove(context.Background(), "pm_seed_visa"))

	methods, err := pm.List(context.Background())
	require.NoError(t, err)
	require.Len(t, methods, 1)
	assert.Equal(t, added.ID, methods[0].ID)
	assert.True(t, methods[0].IsDefault)
}

func TestDuplicateTokenRejected(t *testing.T) {
	c := setup(t)
	pm := billing.NewManager(c.api, nil, billing.WithLogger(quietLogger()))

	_, err := pm.AddToken(context.Background(), "pm_dup", false)
	require.NoError(t, err)

	_, err = pm.AddToken(context.Background(), "pm_dup", false)
	var apiErr *transport.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "already exists")
}

func TestDeclinedCardTokenization(t *testing.T) {
	c := setup(t)
	pm := billing.NewManager(c.api, c.stub.Tokenizer(), billing.WithLogger(quietLogger()))

	_, err := pm.Add(context.Background(), billing.CardDetails{
		Number:   apistub.DeclinedCardNumber,
		ExpMonth: 3,
		ExpYear:  2031,
		CVC:      "456",
	}, false)
	var tokErr *billing.TokenizeError
	require.ErrorAs(t, err, &tokErr)
}

func TestHTTPTokenizerAgainstProviderEndpoint(t *testing.T) {
	stub := apistub.New(apistub.WithLogger(quietLogger()))
	srv := httptest.NewServer(stub.Router())
	t.Cleanup(srv.Close)

	tok := billing.NewHTTPTokenizer(srv.URL + "/provider/tokenize/")
	ref, err := tok.Tokenize(context.Background(), billing.CardDetails{
		Number:   "4242424242424242",
		ExpMonth: 12,
		ExpYear:  2031,
		CVC:      "123",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "pm_"))

	_, err = tok.Tokenize(context.Background(), billing.CardDetails{
		Number:   apistub.DeclinedCardNumber,
		ExpMonth: 12,
		ExpYear:  2031,
		CVC:      "123",
	})
	var tokErr *billing.TokenizeError
	require.ErrorAs(t, err, &tokErr)
}

func TestBillingResources(t *testing.T) {
	c := setup(t)
	b := billing.NewClient(c.api)

	invoices, err := b.Invoices(context.Background())
	require.NoError(t, err)
	require.Len(t, invoices, 3)
	assert.Equal(t, "inv_003", invoices[0].ID)
	assert.Equal(t, billing.InvoicePaid, invoices[0].Status)

	def, err := b.DefaultPaymentMethod(context.Background())
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.Equal(t, "pm_seed_visa", def.ID)

	plan, err := b.CurrentPlan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Pro", plan.Name)
	assert.InDelta(t, 29.99, plan.PriceMonthly, 0.001)
}

func TestDashboardResources(t *testing.T) {
	c := setup(t)
	d := dashboard.NewClient(c.api)

	stats, err := d.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 224, stats.TotalCallsThisCycle)

	agents, err := d.Agents(context.Background())
	require.NoError(t, err)
	require.Len(t, agents, 3)

	completed, err := d.Calls(context.Background(), "completed")
	require.NoError(t, err)
	require.Len(t, completed, 2)
	for _, call := range completed {
		assert.Equal(t, "completed", call.Status)
	}

	none, err := d.Calls(context.Background(), "no-such-status")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestUnauthenticatedRequestRejected(t *testing.T) {
	stub := apistub.New(apistub.WithLogger(quietLogger()))
	srv := httptest.NewServer(stub.Router())
	t.Cleanup(srv.Close)

	api := transport.New(srv.URL, nil, transport.WithLogger(quietLogger()))
	_, err := accounts.NewClient(api).UserData(context.Background())
	var apiErr *transport.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestSpecDocumentServed(t *testing.T) {
	stub := apistub.New(apistub.WithLogger(quietLogger()))
	srv := httptest.NewServer(stub.Router())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/openapi.yaml")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "openapi: 3.0.3")

	docs, err := http.Get(srv.URL + "/docs")
	require.NoError(t, err)
	docs.Body.Close()
	assert.Equal(t, http.StatusOK, docs.StatusCode)
}
