package stripe_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/fivetwenty-io/asyncstripe/pkg/stripe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, payload string) interface{} {
	t.Helper()

	var value interface{}

	decoder := json.NewDecoder(strings.NewReader(payload))
	decoder.UseNumber()
	require.NoError(t, decoder.Decode(&value))

	return value
}

func TestMaterialize_TypesByKind(t *testing.T) {
	t.Parallel()

	for _, kind := range stripe.Kinds() {
		res, ok := stripe.Materialize(map[string]interface{}{"object": kind}, "", "").(stripe.Resource)
		require.True(t, ok, kind)
		assert.Equal(t, kind, res.Base().Kind())
		assert.IsType(t, stripe.NewResource(kind), res, kind)
	}

	unknown, ok := stripe.Materialize(map[string]interface{}{"object": "widget", "id": "w_1"}, "", "").(*stripe.Object)
	require.True(t, ok)
	assert.Equal(t, "widget", unknown.Kind())
}

func TestMaterialize_CustomerGraph(t *testing.T) {
	t.Parallel()

	value := decode(t, `{
		"id": "cus_1",
		"object": "customer",
		"subscriptions": {
			"object": "list",
			"url": "/v1/customers/cus_1/subscriptions",
			"has_more": true,
			"total_count": 3,
			"data": [
				{"id": "sub_1", "object": "subscription", "customer": "cus_1", "plan": {"id": "gold", "object": "plan"}}
			]
		}
	}`)

	customer, err := stripe.MaterializeAs(value, "sk_test_1", "", func() *stripe.Customer { return stripe.NewCustomer("") })
	require.NoError(t, err)

	list := customer.GetList("subscriptions")
	require.NotNil(t, list)
	assert.True(t, list.HasMore())
	assert.Equal(t, int64(3), list.TotalCount())
	assert.Equal(t, "sub_1", list.LastID())

	subs := customer.Subscriptions()
	require.Len(t, subs, 1)
	assert.IsType(t, &stripe.Plan{}, subs[0].GetObject("plan"))
	assert.Equal(t, "sk_test_1", subs[0].Plan().APIKey())
}

func TestMaterializeAs_FallsBackToRequestedType(t *testing.T) {
	t.Parallel()

	invoice, err := stripe.MaterializeAs(map[string]interface{}{"amount_due": json.Number("10")}, "", "",
		func() *stripe.Invoice { return stripe.NewInvoice("") })
	require.NoError(t, err)
	assert.Equal(t, int64(10), invoice.GetInt64("amount_due"))
	assert.Equal(t, stripe.KindInvoice, invoice.Kind())

	_, err = stripe.MaterializeAs("not a record", "", "", stripe.NewList)
	require.Error(t, err)
	assert.True(t, stripe.IsAPIError(err))
}

func TestMaterialize_PassesScalarsThrough(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "x", stripe.Materialize("x", "", ""))
	assert.Nil(t, stripe.Materialize(nil, "", ""))

	charge := stripe.NewCharge("ch_1")
	assert.Same(t, charge, stripe.Materialize(charge, "", ""))
}

func TestItems(t *testing.T) {
	t.Parallel()

	list := stripe.NewList()
	list.Merge(map[string]interface{}{
		"object": "list",
		"data": []interface{}{
			map[string]interface{}{"id": "ch_1", "object": "charge"},
			map[string]interface{}{"id": "re_1", "object": "refund"},
		},
	}, false)

	assert.Len(t, list.Data(), 2)
	assert.Len(t, stripe.Items[*stripe.Charge](list), 1)
	assert.Nil(t, stripe.Items[*stripe.Charge](nil))
	assert.Equal(t, 2, list.Len())
}
