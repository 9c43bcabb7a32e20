package stripeclient_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/fivetwenty-io/asyncstripe/internal/fakestripe"
	"github.com/fivetwenty-io/asyncstripe/pkg/stripe"
	"github.com/fivetwenty-io/asyncstripe/pkg/stripeclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFake(t *testing.T) (*fakestripe.Server, *httptest.Server) {
	t.Helper()

	fake := fakestripe.NewServer()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	return fake, srv
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires config", func(t *testing.T) {
		t.Parallel()

		_, err := stripeclient.New(context.Background(), nil)
		assert.ErrorIs(t, err, stripe.ErrConfigRequired)
	})

	t.Run("creates client with config", func(t *testing.T) {
		t.Parallel()

		client, err := stripeclient.New(context.Background(), &stripe.Config{APIKey: "sk_test_123"})
		require.NoError(t, err)
		assert.NotNil(t, client)
		assert.Equal(t, "sk_test_123", client.APIKey())
	})

	t.Run("does not modify the caller's config", func(t *testing.T) {
		t.Parallel()

		config := &stripe.Config{APIKey: "sk_test_123", APIBase: "api.example.com/"}

		_, err := stripeclient.New(context.Background(), config)
		require.NoError(t, err)
		assert.Equal(t, "api.example.com/", config.APIBase)
	})
}

func TestNewWithAPIKey(t *testing.T) {
	t.Parallel()

	client, err := stripeclient.NewWithAPIKey(context.Background(), "sk_test_abc")
	require.NoError(t, err)
	assert.Equal(t, "sk_test_abc", client.APIKey())
}

func TestNewFromEnv(t *testing.T) {
	_, srv := newFake(t)

	t.Setenv("STRIPE_API_KEY", "sk_test_env")
	t.Setenv("STRIPE_API_BASE", srv.URL)

	client, err := stripeclient.NewFromEnv(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sk_test_env", client.APIKey())

	ctx := context.Background()
	balance, err := client.Balance().Retrieve(ctx).Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, stripe.KindBalance, balance.Kind())
}

func TestNewFromEnvRejectsBadTimeout(t *testing.T) {
	t.Setenv("STRIPE_HTTP_TIMEOUT", "soon")

	_, err := stripeclient.NewFromEnv(context.Background())
	assert.Error(t, err)
}

func TestSkipTLSVerifyNeedsDevMode(t *testing.T) {
	t.Setenv("STRIPE_DEV_MODE", "")

	_, err := stripeclient.New(context.Background(), &stripe.Config{SkipTLSVerify: true})
	require.Error(t, err)

	t.Setenv("STRIPE_DEV_MODE", "true")

	_, err = stripeclient.New(context.Background(), &stripe.Config{SkipTLSVerify: true})
	assert.NoError(t, err)
}

func TestGlobalSettings(t *testing.T) {
	fake, srv := newFake(t)

	t.Setenv("STRIPE_API_KEY", "")
	stripeclient.SetDefault(nil)
	t.Cleanup(func() { stripeclient.SetDefault(nil) })

	ctx := context.Background()
	client := stripeclient.Default()
	assert.Same(t, client, stripeclient.Default())

	stripeclient.SetAPIBase(srv.URL)

	_, err := client.Customers().Create(ctx, stripe.Params{"email": "a@example.com"}).Await(ctx)
	require.Error(t, err)
	assert.True(t, stripe.IsAuthenticationError(err))
	assert.Empty(t, fake.Requests())

	stripeclient.SetAPIKey("sk_test_global")
	stripeclient.SetAPIVersion("2015-10-16")
	assert.Equal(t, "sk_test_global", stripeclient.APIKey())

	customer, err := client.Customers().Create(ctx, stripe.Params{"email": "a@example.com"}).Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sk_test_global", customer.APIKey())

	requests := fake.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, "sk_test_global", requests[0].APIKey)
	assert.Equal(t, "2015-10-16", requests[0].StripeVersion)
}
