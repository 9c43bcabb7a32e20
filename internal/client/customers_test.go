package client

import (
	"context"
	"net/http"
	"testing"

	"github.com/fivetwenty-io/asyncstripe/pkg/stripe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func customerFixture() map[string]interface{} {
	return map[string]interface{}{
		"id":          "cus_1",
		"object":      "customer",
		"email":       "jenny@example.com",
		"description": "Jenny",
		"metadata":    map[string]interface{}{"tier": "gold"},
		"discount":    map[string]interface{}{"object": "discount", "coupon": map[string]interface{}{"id": "25OFF", "object": "coupon"}},
		"subscriptions": map[string]interface{}{
			"object":      "list",
			"url":         "/v1/customers/cus_1/subscriptions",
			"has_more":    false,
			"total_count": 1,
			"data": []interface{}{
				map[string]interface{}{
					"id":       "sub_1",
					"object":   "subscription",
					"customer": "cus_1",
					"plan":     map[string]interface{}{"id": "gold", "object": "plan"},
				},
			},
		},
	}
}

func TestCustomersClient_RetrieveBuildsTypedGraph(t *testing.T) {
	t.Parallel()

	server := newStubServer(t, respondWith(http.StatusOK, customerFixture()))
	client := newTestClient(t, server.URL)

	customer := awaitT(t, client.Customers().Retrieve(context.Background(), "cus_1"))

	assert.Equal(t, "/v1/customers/cus_1", server.last().Path)
	assert.Equal(t, http.MethodGet, server.last().Method)
	assert.Equal(t, "cus_1", customer.ID())
	assert.Equal(t, "jenny@example.com", customer.Email())
	assert.Equal(t, testAPIKey, customer.APIKey())

	subs := customer.Subscriptions()
	require.Len(t, subs, 1)
	assert.Equal(t, "sub_1", subs[0].ID())
	require.NotNil(t, subs[0].Plan())
	assert.Equal(t, "gold", subs[0].Plan().ID())
	assert.Equal(t, testAPIKey, subs[0].APIKey())

	path, err := subs[0].InstancePath()
	require.NoError(t, err)
	assert.Equal(t, "/v1/customers/cus_1/subscriptions/sub_1", path)
}

func TestCustomersClient_SaveWithoutChangesSkipsNetwork(t *testing.T) {
	t.Parallel()

	server := newStubServer(t, respondWith(http.StatusOK, customerFixture()))
	client := newTestClient(t, server.URL)

	customer := awaitT(t, client.Customers().Retrieve(context.Background(), "cus_1"))
	require.Equal(t, 1, server.hits())

	future := client.Customers().Save(context.Background(), customer)

	select {
	case <-future.Done():
	default:
		t.Fatal("saving an unchanged object should resolve immediately")
	}

	saved, err := future.Result()
	require.NoError(t, err)
	assert.Same(t, customer, saved)
	assert.Equal(t, 1, server.hits())
}

func TestCustomersClient_SaveSendsOnlyChanges(t *testing.T) {
	t.Parallel()

	server := newStubServer(t, respondWith(http.StatusOK, customerFixture()))
	client := newTestClient(t, server.URL)

	customer := awaitT(t, client.Customers().Retrieve(context.Background(), "cus_1"))

	require.NoError(t, customer.Set("description", "Jenny Rosen"))
	require.NoError(t, customer.GetObject("metadata").Base().Set("plan", "annual"))

	awaitT(t, client.Customers().Save(context.Background(), customer))

	rec := server.last()
	assert.Equal(t, http.MethodPost, rec.Method)
	assert.Equal(t, "/v1/customers/cus_1", rec.Path)
	assert.Equal(t, "Jenny Rosen", rec.Form.Get("description"))
	assert.Equal(t, "annual", rec.Form.Get("metadata[plan]"))
	assert.Empty(t, rec.Form.Get("email"))
	assert.False(t, customer.Changed())
}

func TestCustomersClient_SetEmptyStringIsRejected(t *testing.T) {
	t.Parallel()

	customer := stripe.NewCustomer("cus_1")
	assert.ErrorIs(t, customer.Set("description", ""), stripe.ErrEmptyStringValue)
}

func TestCustomersClient_Delete(t *testing.T) {
	t.Parallel()

	server := newStubServer(t, respondWith(http.StatusOK, map[string]interface{}{"deleted": true, "id": "cus_1"}))
	client := newTestClient(t, server.URL)

	customer := stripe.NewCustomer("cus_1")
	deleted := awaitT(t, client.Customers().Delete(context.Background(), customer, nil))

	rec := server.last()
	assert.Equal(t, http.MethodDelete, rec.Method)
	assert.Equal(t, "/v1/customers/cus_1", rec.Path)
	assert.Same(t, customer, deleted)
	assert.True(t, deleted.Deleted())
	assert.Equal(t, "cus_1", deleted.ID())
}

func TestCustomersClient_DeleteDiscount(t *testing.T) {
	t.Parallel()

	server := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			writeJSON(w, http.StatusOK, customerFixture())

			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": true})
	})

	client := newTestClient(t, server.URL)
	customer := awaitT(t, client.Customers().Retrieve(context.Background(), "cus_1"))
	require.NotNil(t, customer.Get("discount"))

	awaitT(t, client.Customers().DeleteDiscount(context.Background(), customer))

	rec := server.last()
	assert.Equal(t, http.MethodDelete, rec.Method)
	assert.Equal(t, "/v1/customers/cus_1/discount", rec.Path)
	assert.True(t, customer.Has("discount"))
	assert.Nil(t, customer.Get("discount"))
	assert.Equal(t, "jenny@example.com", customer.Email())
}

func TestCustomersClient_NestedQueries(t *testing.T) {
	t.Parallel()

	list := map[string]interface{}{"object": "list", "url": "/v1/invoices", "has_more": false, "data": []interface{}{}}

	tests := []struct {
		name string
		call func(c *Client, customer *stripe.Customer) *stripe.Future[*stripe.List]
		path string
	}{
		{"invoices", func(c *Client, customer *stripe.Customer) *stripe.Future[*stripe.List] {
			return c.Customers().Invoices(context.Background(), customer, stripe.Params{"limit": 3})
		}, "/v1/invoices"},
		{"invoice items", func(c *Client, customer *stripe.Customer) *stripe.Future[*stripe.List] {
			return c.Customers().InvoiceItems(context.Background(), customer, stripe.Params{"limit": 3})
		}, "/v1/invoiceitems"},
		{"charges", func(c *Client, customer *stripe.Customer) *stripe.Future[*stripe.List] {
			return c.Customers().Charges(context.Background(), customer, stripe.Params{"limit": 3})
		}, "/v1/charges"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := newStubServer(t, respondWith(http.StatusOK, list))
			client := newTestClient(t, server.URL)

			awaitT(t, tt.call(client, stripe.NewCustomer("cus_1")))

			rec := server.last()
			assert.Equal(t, http.MethodGet, rec.Method)
			assert.Equal(t, tt.path, rec.Path)
			assert.Equal(t, "cus_1", rec.Query.Get("customer"))
			assert.Equal(t, "3", rec.Query.Get("limit"))
		})
	}
}

func TestCustomersClient_AddInvoiceItem(t *testing.T) {
	t.Parallel()

	server := newStubServer(t, respondWith(http.StatusOK, map[string]interface{}{
		"id": "ii_1", "object": "invoiceitem", "customer": "cus_1", "amount": 250,
	}))
	client := newTestClient(t, server.URL)

	params := stripe.Params{"amount": 250, "currency": "usd"}
	item := awaitT(t, client.Customers().AddInvoiceItem(context.Background(), stripe.NewCustomer("cus_1"), params))

	rec := server.last()
	assert.Equal(t, http.MethodPost, rec.Method)
	assert.Equal(t, "/v1/invoiceitems", rec.Path)
	assert.Equal(t, "cus_1", rec.Form.Get("customer"))
	assert.Equal(t, "ii_1", item.ID())
	assert.NotContains(t, params, "customer", "caller params are not modified")
}

func TestCustomersClient_LegacySubscription(t *testing.T) {
	t.Parallel()

	server := newStubServer(t, respondWith(http.StatusOK, map[string]interface{}{
		"id": "sub_9", "object": "subscription", "customer": "cus_1", "status": "active",
	}))
	client := newTestClient(t, server.URL)

	customer := stripe.NewCustomer("cus_1")

	sub := awaitT(t, client.Customers().UpdateSubscription(context.Background(), customer, stripe.Params{"plan": "gold"}))

	rec := server.last()
	assert.Equal(t, http.MethodPost, rec.Method)
	assert.Equal(t, "/v1/customers/cus_1/subscription", rec.Path)
	assert.Equal(t, "gold", rec.Form.Get("plan"))
	assert.Equal(t, "sub_9", sub.ID())
	assert.Same(t, sub, customer.Subscription())

	awaitT(t, client.Customers().CancelSubscription(context.Background(), customer, nil))
	assert.Equal(t, http.MethodDelete, server.last().Method)
	assert.Equal(t, "/v1/customers/cus_1/subscription", server.last().Path)
}

func TestSubscriptionsClient_DeleteDiscount(t *testing.T) {
	t.Parallel()

	server := newStubServer(t, respondWith(http.StatusOK, map[string]interface{}{"deleted": true}))
	client := newTestClient(t, server.URL)

	sub := stripe.NewSubscription("sub_1")
	sub.Merge(map[string]interface{}{
		"id": "sub_1", "object": "subscription", "customer": "cus_1",
		"discount": map[string]interface{}{"object": "discount"},
	}, false)

	awaitT(t, client.Subscriptions().DeleteDiscount(context.Background(), sub))

	assert.Equal(t, "/v1/customers/cus_1/subscriptions/sub_1/discount", server.last().Path)
	assert.Nil(t, sub.Get("discount"))
}

func TestSubscriptionsClient_RequiresCustomer(t *testing.T) {
	t.Parallel()

	server := newStubServer(t, respondWith(http.StatusOK, map[string]interface{}{}))
	client := newTestClient(t, server.URL)

	_, err := client.Subscriptions().Delete(context.Background(), stripe.NewSubscription("sub_1"), nil).Result()
	require.Error(t, err)
	assert.True(t, stripe.IsInvalidRequestError(err))
	assert.Equal(t, 0, server.hits())
}
