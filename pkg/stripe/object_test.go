package stripe_test

import (
	"encoding/json"
	"testing"

	"github.com/fivetwenty-io/asyncstripe/pkg/stripe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObject_SetAndUnset(t *testing.T) {
	t.Parallel()

	obj := stripe.NewObject("obj_1")

	require.NoError(t, obj.Set("name", "Widget"))
	assert.Equal(t, "Widget", obj.GetString("name"))
	assert.True(t, obj.Changed())

	err := obj.Set("name", "")
	require.ErrorIs(t, err, stripe.ErrEmptyStringValue)
	assert.Equal(t, "Widget", obj.GetString("name"))

	obj.Unset("name")
	assert.True(t, obj.Has("name"))
	assert.Nil(t, obj.Get("name"))
	assert.Equal(t, stripe.Params{"name": ""}, obj.Serialize())
}

func TestObject_FullMergeReplacesFields(t *testing.T) {
	t.Parallel()

	obj := stripe.NewObject("")
	obj.Merge(map[string]interface{}{"id": "cus_1", "object": "customer", "email": "a@example.com", "name": "A"}, false)
	require.NoError(t, obj.Set("name", "B"))

	obj.Merge(map[string]interface{}{"id": "cus_1", "object": "customer", "email": "b@example.com"}, false)

	assert.Equal(t, "cus_1", obj.ID())
	assert.Equal(t, "customer", obj.Kind())
	assert.Equal(t, "b@example.com", obj.GetString("email"))
	assert.False(t, obj.Has("name"))
	assert.False(t, obj.Changed())
	assert.Empty(t, obj.Serialize())
}

func TestObject_PartialMergeKeepsFields(t *testing.T) {
	t.Parallel()

	obj := stripe.NewObject("")
	obj.Merge(map[string]interface{}{"id": "ch_1", "amount": json.Number("100"), "description": "x"}, false)
	require.NoError(t, obj.Set("description", "y"))

	obj.Merge(map[string]interface{}{"amount": json.Number("50")}, true)

	assert.Equal(t, int64(50), obj.GetInt64("amount"))
	assert.Equal(t, "y", obj.GetString("description"))
	assert.Equal(t, stripe.Params{"description": "y"}, obj.Serialize())
}

func TestObject_MergeMaterializesNestedValues(t *testing.T) {
	t.Parallel()

	obj := stripe.NewObject("")
	obj.Bind("sk_test_nested", "acct_9")
	obj.Merge(map[string]interface{}{
		"id":       "ch_1",
		"object":   "charge",
		"customer": map[string]interface{}{"id": "cus_1", "object": "customer"},
		"metadata": map[string]interface{}{"order": "42"},
		"refunds": []interface{}{
			map[string]interface{}{"id": "re_1", "object": "refund"},
		},
	}, false)

	customer, ok := obj.GetObject("customer").(*stripe.Customer)
	require.True(t, ok)
	assert.Equal(t, "cus_1", customer.ID())
	assert.Equal(t, "sk_test_nested", customer.APIKey())
	assert.Equal(t, "acct_9", customer.StripeAccount())
	assert.Equal(t, "cus_1", obj.GetID("customer"))

	metadata, ok := obj.GetObject("metadata").(*stripe.Object)
	require.True(t, ok)
	assert.Equal(t, "42", metadata.GetString("order"))

	refunds, ok := obj.Get("refunds").([]interface{})
	require.True(t, ok)
	_, ok = refunds[0].(*stripe.Refund)
	assert.True(t, ok)
}

func TestObject_SerializeDiffs(t *testing.T) {
	t.Parallel()

	obj := stripe.NewObject("")
	obj.Merge(map[string]interface{}{
		"id":       "cus_1",
		"object":   "customer",
		"email":    "a@example.com",
		"metadata": map[string]interface{}{"a": "1", "b": "2"},
		"shipping": map[string]interface{}{"name": "Jenny"},
		"default":  map[string]interface{}{"id": "card_1", "object": "card", "customer": "cus_1"},
	}, false)

	t.Run("nested record changes", func(t *testing.T) {
		require.NoError(t, obj.GetObject("shipping").Base().Set("phone", "555"))
		assert.Equal(t, stripe.Params{"shipping": stripe.Params{"phone": "555"}}, obj.Serialize())
	})

	t.Run("replaced map clears missing keys", func(t *testing.T) {
		require.NoError(t, obj.Set("metadata", map[string]interface{}{"a": "3"}))

		params := obj.Serialize()
		assert.Equal(t, map[string]interface{}{"a": "3", "b": ""}, params["metadata"])
	})

	t.Run("typed nested resources are skipped", func(t *testing.T) {
		require.NoError(t, obj.GetObject("default").Base().Set("name", "J"))
		assert.NotContains(t, obj.Serialize(), "default")
	})

	t.Run("id is never sent", func(t *testing.T) {
		require.NoError(t, obj.Set("id", "cus_2"))
		assert.NotContains(t, obj.Serialize(), "id")
	})
}

func TestObject_ToMapAndJSON(t *testing.T) {
	t.Parallel()

	obj := stripe.NewObject("")
	obj.Merge(map[string]interface{}{
		"id":       "in_1",
		"object":   "invoice",
		"lines":    map[string]interface{}{"object": "list", "url": "/v1/invoices/in_1/lines", "data": []interface{}{}},
		"discount": nil,
	}, false)

	plain := obj.ToMap()
	lines, ok := plain["lines"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "/v1/invoices/in_1/lines", lines["url"])

	blob, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"in_1","object":"invoice","discount":null,"lines":{"object":"list","url":"/v1/invoices/in_1/lines","data":[]}}`, string(blob))

	assert.Equal(t, "<invoice id=in_1>", obj.String())
	assert.Equal(t, []string{"discount", "id", "lines", "object"}, obj.Keys())
}

func TestObject_Getters(t *testing.T) {
	t.Parallel()

	obj := stripe.NewObject("")
	obj.Merge(map[string]interface{}{
		"number": json.Number("12"),
		"float":  json.Number("12.7"),
		"text":   "34",
		"flag":   true,
	}, false)

	assert.Equal(t, int64(12), obj.GetInt64("number"))
	assert.Equal(t, int64(12), obj.GetInt64("float"))
	assert.Equal(t, int64(34), obj.GetInt64("text"))
	assert.Equal(t, int64(0), obj.GetInt64("missing"))
	assert.True(t, obj.GetBool("flag"))
	assert.Empty(t, obj.GetString("number"))
	assert.Nil(t, obj.GetList("flag"))
	assert.Equal(t, 4, obj.Len())
}

func TestObject_NotAddressable(t *testing.T) {
	t.Parallel()

	_, err := stripe.NewObject("x").InstancePath()
	assert.ErrorIs(t, err, stripe.ErrNotAddressable)
}
