package fakestripe

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testKey = "sk_test_fake"

type response struct {
	status int
	header http.Header
	body   map[string]interface{}
}

func (r response) errorType() string {
	e, _ := r.body["error"].(map[string]interface{})
	s, _ := e["type"].(string)

	return s
}

func setupFake(t *testing.T, opts ...Option) (*Server, *httptest.Server) {
	t.Helper()

	fake := NewServer(opts...)
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	return fake, srv
}

func send(t *testing.T, srv *httptest.Server, method, path string, form url.Values, headers map[string]string) response {
	t.Helper()

	var body *strings.Reader

	target := srv.URL + path
	if method == http.MethodPost {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
		if len(form) > 0 {
			target += "?" + form.Encode()
		}
	}

	req, err := http.NewRequest(method, target, body)
	require.NoError(t, err)

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+testKey)

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))

	return response{status: resp.StatusCode, header: resp.Header, body: decoded}
}

func post(t *testing.T, srv *httptest.Server, path string, form url.Values) response {
	t.Helper()

	return send(t, srv, http.MethodPost, path, form, nil)
}

func get(t *testing.T, srv *httptest.Server, path string, query url.Values) response {
	t.Helper()

	return send(t, srv, http.MethodGet, path, query, nil)
}

func TestAuthRequired(t *testing.T) {
	t.Parallel()

	_, srv := setupFake(t)

	resp := send(t, srv, http.MethodGet, "/v1/balance", nil, map[string]string{"Authorization": ""})
	assert.Equal(t, http.StatusUnauthorized, resp.status)
	assert.Equal(t, "invalid_request_error", resp.errorType())

	resp = send(t, srv, http.MethodGet, "/v1/balance", nil, map[string]string{"Authorization": "Bearer pk_test_nope12345"})
	assert.Equal(t, http.StatusUnauthorized, resp.status)
	assert.Contains(t, resp.body["error"].(map[string]interface{})["message"], "pk_test_")
}

func TestAllowedKeys(t *testing.T) {
	t.Parallel()

	_, srv := setupFake(t, WithAPIKeys("sk_test_only"))

	resp := get(t, srv, "/v1/balance", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.status)

	resp = send(t, srv, http.MethodGet, "/v1/balance", nil, map[string]string{"Authorization": "Bearer sk_test_only"})
	assert.Equal(t, http.StatusOK, resp.status)
}

func TestCustomerCRUD(t *testing.T) {
	t.Parallel()

	fake, srv := setupFake(t)

	created := post(t, srv, "/v1/customers", url.Values{
		"email":           {"a@example.com"},
		"metadata[order]": {"42"},
	})
	require.Equal(t, http.StatusOK, created.status)
	assert.Equal(t, "customer", created.body["object"])
	assert.NotEmpty(t, created.header.Get("Request-Id"))

	id := created.body["id"].(string)
	assert.True(t, strings.HasPrefix(id, "cus_"))

	updated := post(t, srv, "/v1/customers/"+id, url.Values{"description": {"VIP"}, "metadata[order]": {""}})
	require.Equal(t, http.StatusOK, updated.status)
	assert.Equal(t, "VIP", updated.body["description"])
	assert.Equal(t, "a@example.com", updated.body["email"])
	assert.Empty(t, updated.body["metadata"])

	fetched := get(t, srv, "/v1/customers/"+id, nil)
	assert.Equal(t, "VIP", fetched.body["description"])
	assert.Equal(t, "list", fetched.body["subscriptions"].(map[string]interface{})["object"])

	deleted := send(t, srv, http.MethodDelete, "/v1/customers/"+id, nil, nil)
	assert.Equal(t, true, deleted.body["deleted"])

	missing := get(t, srv, "/v1/customers/"+id, nil)
	assert.Equal(t, http.StatusNotFound, missing.status)
	assert.Equal(t, "id", missing.body["error"].(map[string]interface{})["param"])

	events := get(t, srv, "/v1/events", url.Values{"type": {"customer.created"}})
	assert.Len(t, events.body["data"], 1)

	requests := fake.Requests()
	require.NotEmpty(t, requests)
	assert.Equal(t, testKey, requests[0].APIKey)
	assert.Equal(t, "42", requests[0].Params["metadata"].(map[string]interface{})["order"])
}

func TestListPagination(t *testing.T) {
	t.Parallel()

	_, srv := setupFake(t)

	for range 3 {
		post(t, srv, "/v1/plans", url.Values{
			"amount": {"500"}, "currency": {"usd"}, "interval": {"month"}, "name": {"Basic"},
		})
	}

	first := get(t, srv, "/v1/plans", url.Values{"limit": {"2"}})
	require.Equal(t, http.StatusOK, first.status)
	assert.Equal(t, true, first.body["has_more"])
	assert.Equal(t, "/v1/plans", first.body["url"])

	data := first.body["data"].([]interface{})
	last := data[len(data)-1].(map[string]interface{})["id"].(string)

	second := get(t, srv, "/v1/plans", url.Values{"limit": {"2"}, "starting_after": {last}})
	assert.Equal(t, false, second.body["has_more"])
	assert.Len(t, second.body["data"], 1)
}

func TestIdempotentReplay(t *testing.T) {
	t.Parallel()

	fake, srv := setupFake(t)

	form := url.Values{"email": {"once@example.com"}}
	headers := map[string]string{"Idempotency-Key": "key-1"}

	first := send(t, srv, http.MethodPost, "/v1/customers", form, headers)
	second := send(t, srv, http.MethodPost, "/v1/customers", form, headers)

	assert.Equal(t, first.body["id"], second.body["id"])
	assert.Empty(t, first.header.Get("Idempotent-Replayed"))
	assert.Equal(t, "true", second.header.Get("Idempotent-Replayed"))
	assert.Len(t, fake.Store().List(collectionCustomers, nil), 1)
}

func createCharge(t *testing.T, srv *httptest.Server, extra url.Values) response {
	t.Helper()

	form := url.Values{
		"amount":       {"1000"},
		"currency":     {"usd"},
		"card[number]": {"4242424242424242"},
	}

	for k, v := range extra {
		form[k] = v
	}

	return post(t, srv, "/v1/charges", form)
}

func TestChargeCaptureAndRefund(t *testing.T) {
	t.Parallel()

	_, srv := setupFake(t)

	charge := createCharge(t, srv, url.Values{"capture": {"false"}})
	require.Equal(t, http.StatusOK, charge.status)
	assert.Equal(t, false, charge.body["captured"])

	id := charge.body["id"].(string)

	captured := post(t, srv, "/v1/charges/"+id+"/capture", nil)
	assert.Equal(t, true, captured.body["captured"])

	again := post(t, srv, "/v1/charges/"+id+"/capture", nil)
	assert.Equal(t, http.StatusBadRequest, again.status)

	refunded := post(t, srv, "/v1/charges/"+id+"/refund", url.Values{"amount": {"400"}})
	require.Equal(t, http.StatusOK, refunded.status)
	assert.EqualValues(t, 400, refunded.body["amount_refunded"])
	assert.Equal(t, false, refunded.body["refunded"])
	assert.Len(t, refunded.body["refunds"].(map[string]interface{})["data"], 1)

	rest := post(t, srv, "/v1/refunds", url.Values{"charge": {id}})
	require.Equal(t, http.StatusOK, rest.status)
	assert.EqualValues(t, 600, rest.body["amount"])

	over := post(t, srv, "/v1/refunds", url.Values{"charge": {id}})
	assert.Equal(t, http.StatusBadRequest, over.status)

	balance := get(t, srv, "/v1/balance", nil)
	available := balance.body["available"].([]interface{})[0].(map[string]interface{})
	assert.EqualValues(t, 0, available["amount"])
}

func TestChargeDeclined(t *testing.T) {
	t.Parallel()

	_, srv := setupFake(t)

	resp := post(t, srv, "/v1/charges", url.Values{
		"amount": {"1000"}, "currency": {"usd"}, "source": {declinedToken},
	})
	assert.Equal(t, http.StatusPaymentRequired, resp.status)
	assert.Equal(t, "card_error", resp.errorType())
	assert.Equal(t, "card_declined", resp.body["error"].(map[string]interface{})["code"])
}

func TestChargeValidation(t *testing.T) {
	t.Parallel()

	_, srv := setupFake(t)

	tests := []struct {
		name  string
		form  url.Values
		param string
	}{
		{"missing amount", url.Values{"currency": {"usd"}}, "amount"},
		{"missing currency", url.Values{"amount": {"1000"}}, "currency"},
		{"missing source", url.Values{"amount": {"1000"}, "currency": {"usd"}}, "source"},
		{"unknown token", url.Values{"amount": {"1000"}, "currency": {"usd"}, "source": {"tok_nope"}}, "source"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp := post(t, srv, "/v1/charges", tt.form)
			assert.Equal(t, http.StatusBadRequest, resp.status)
			assert.Equal(t, tt.param, resp.body["error"].(map[string]interface{})["param"])
		})
	}
}

func TestTokenSingleUse(t *testing.T) {
	t.Parallel()

	_, srv := setupFake(t)

	token := post(t, srv, "/v1/tokens", url.Values{"card[number]": {"5555555555554444"}})
	require.Equal(t, http.StatusOK, token.status)
	assert.Equal(t, "MasterCard", token.body["card"].(map[string]interface{})["brand"])

	id := token.body["id"].(string)

	first := post(t, srv, "/v1/charges", url.Values{"amount": {"1000"}, "currency": {"usd"}, "source": {id}})
	assert.Equal(t, http.StatusOK, first.status)

	second := post(t, srv, "/v1/charges", url.Values{"amount": {"1000"}, "currency": {"usd"}, "source": {id}})
	assert.Equal(t, http.StatusBadRequest, second.status)
}

func TestDisputeLifecycle(t *testing.T) {
	t.Parallel()

	_, srv := setupFake(t)

	id := createCharge(t, srv, nil).body["id"].(string)

	dispute := post(t, srv, "/v1/charges/"+id+"/dispute", url.Values{"evidence": {"receipt"}})
	require.Equal(t, http.StatusOK, dispute.status)
	assert.Equal(t, "under_review", dispute.body["status"])
	assert.Equal(t, "receipt", dispute.body["evidence"])

	charge := get(t, srv, "/v1/charges/"+id, nil)
	assert.Equal(t, dispute.body["id"], charge.body["dispute"].(map[string]interface{})["id"])

	closed := post(t, srv, "/v1/charges/"+id+"/dispute/close", nil)
	assert.Equal(t, "lost", closed.body["status"])
}

func TestCustomerSourcesAndSubscriptions(t *testing.T) {
	t.Parallel()

	_, srv := setupFake(t)

	post(t, srv, "/v1/plans", url.Values{
		"id": {"gold"}, "amount": {"2000"}, "currency": {"usd"}, "interval": {"month"}, "name": {"Gold"},
	})
	post(t, srv, "/v1/coupons", url.Values{"id": {"HALF"}, "percent_off": {"50"}, "duration": {"once"}})

	customer := post(t, srv, "/v1/customers", url.Values{
		"card[number]": {"4242424242424242"},
		"plan":         {"gold"},
		"coupon":       {"HALF"},
	})
	require.Equal(t, http.StatusOK, customer.status)

	id := customer.body["id"].(string)
	assert.NotNil(t, customer.body["default_source"])
	assert.NotNil(t, customer.body["discount"])
	assert.Len(t, customer.body["subscriptions"].(map[string]interface{})["data"], 1)

	card := post(t, srv, "/v1/customers/"+id+"/sources", url.Values{"source[number]": {"378282246310005"}})
	require.Equal(t, http.StatusOK, card.status)
	assert.Equal(t, "American Express", card.body["brand"])
	assert.Equal(t, id, card.body["customer"])

	cardID := card.body["id"].(string)
	renamed := post(t, srv, "/v1/customers/"+id+"/sources/"+cardID, url.Values{"name": {"J Doe"}})
	assert.Equal(t, "J Doe", renamed.body["name"])

	deleted := send(t, srv, http.MethodDelete, "/v1/customers/"+id+"/sources/"+cardID, nil, nil)
	assert.Equal(t, true, deleted.body["deleted"])

	legacy := post(t, srv, "/v1/customers/"+id+"/subscription", url.Values{"quantity": {"3"}})
	assert.EqualValues(t, 3, legacy.body["quantity"])

	upcoming := get(t, srv, "/v1/invoices/upcoming", url.Values{"customer": {id}})
	require.Equal(t, http.StatusOK, upcoming.status)
	assert.EqualValues(t, 6000, upcoming.body["amount_due"])

	noDiscount := send(t, srv, http.MethodDelete, "/v1/customers/"+id+"/discount", nil, nil)
	assert.Equal(t, true, noDiscount.body["deleted"])

	again := send(t, srv, http.MethodDelete, "/v1/customers/"+id+"/discount", nil, nil)
	assert.Equal(t, http.StatusNotFound, again.status)

	canceled := send(t, srv, http.MethodDelete, "/v1/customers/"+id+"/subscription", nil, nil)
	assert.Equal(t, "canceled", canceled.body["status"])

	gone := send(t, srv, http.MethodDelete, "/v1/customers/"+id+"/subscription", nil, nil)
	assert.Equal(t, http.StatusNotFound, gone.status)
}

func TestInvoiceLifecycle(t *testing.T) {
	t.Parallel()

	_, srv := setupFake(t)

	id := post(t, srv, "/v1/customers", url.Values{"source[number]": {"4242424242424242"}}).body["id"].(string)

	empty := post(t, srv, "/v1/invoices", url.Values{"customer": {id}})
	assert.Equal(t, http.StatusBadRequest, empty.status)

	post(t, srv, "/v1/invoiceitems", url.Values{"customer": {id}, "amount": {"700"}, "currency": {"usd"}})
	post(t, srv, "/v1/invoiceitems", url.Values{"customer": {id}, "amount": {"300"}, "currency": {"usd"}})

	invoice := post(t, srv, "/v1/invoices", url.Values{"customer": {id}})
	require.Equal(t, http.StatusOK, invoice.status)
	assert.EqualValues(t, 1000, invoice.body["amount_due"])
	assert.Len(t, invoice.body["lines"].(map[string]interface{})["data"], 2)

	invoiceID := invoice.body["id"].(string)

	paid := post(t, srv, "/v1/invoices/"+invoiceID+"/pay", nil)
	require.Equal(t, http.StatusOK, paid.status)
	assert.Equal(t, true, paid.body["paid"])
	assert.NotNil(t, paid.body["charge"])

	twice := post(t, srv, "/v1/invoices/"+invoiceID+"/pay", nil)
	assert.Equal(t, http.StatusBadRequest, twice.status)
}

func TestTransfersAndFees(t *testing.T) {
	t.Parallel()

	_, srv := setupFake(t)

	recipient := post(t, srv, "/v1/recipients", url.Values{"name": {"Jane"}, "type": {"individual"}})
	rp := recipient.body["id"].(string)

	transfer := post(t, srv, "/v1/transfers", url.Values{"amount": {"1000"}, "currency": {"usd"}, "recipient": {rp}})
	require.Equal(t, http.StatusOK, transfer.status)

	tr := transfer.body["id"].(string)

	reversal := post(t, srv, "/v1/transfers/"+tr+"/reversals", url.Values{"amount": {"250"}})
	require.Equal(t, http.StatusOK, reversal.status)
	assert.Equal(t, tr, reversal.body["transfer"])

	listed := get(t, srv, "/v1/transfers", url.Values{"recipient": {rp}})
	assert.Len(t, listed.body["data"], 1)

	canceled := post(t, srv, "/v1/transfers/"+tr+"/cancel", nil)
	assert.Equal(t, "canceled", canceled.body["status"])

	again := post(t, srv, "/v1/transfers/"+tr+"/cancel", nil)
	assert.Equal(t, http.StatusBadRequest, again.status)

	charge := createCharge(t, srv, url.Values{"application_fee": {"100"}})
	feeID := charge.body["application_fee"].(string)

	fee := post(t, srv, "/v1/application_fees/"+feeID+"/refund", url.Values{"amount": {"40"}})
	require.Equal(t, http.StatusOK, fee.status)
	assert.EqualValues(t, 40, fee.body["amount_refunded"])
	assert.Len(t, fee.body["refunds"].(map[string]interface{})["data"], 1)
}

func TestAccountEndpoints(t *testing.T) {
	t.Parallel()

	_, srv := setupFake(t)

	own := get(t, srv, "/v1/account", nil)
	assert.Equal(t, DefaultAccountID, own.body["id"])

	managed := post(t, srv, "/v1/accounts", url.Values{"managed": {"true"}, "country": {"CA"}})
	require.Equal(t, http.StatusOK, managed.status)
	assert.NotNil(t, managed.body["keys"])

	connected := send(t, srv, http.MethodGet, "/v1/account", nil,
		map[string]string{"Stripe-Account": managed.body["id"].(string)})
	assert.Equal(t, "CA", connected.body["country"])
}

func TestFileUpload(t *testing.T) {
	t.Parallel()

	_, srv := setupFake(t)

	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("purpose", "dispute_evidence"))

	part, err := writer.CreateFormFile("file", "receipt.pdf")
	require.NoError(t, err)

	_, err = part.Write([]byte("%PDF-1.4"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/v1/files", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+testKey)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "file_upload", body["object"])
	assert.EqualValues(t, 8, body["size"])
	assert.Equal(t, "pdf", body["type"])

	listed := get(t, srv, "/v1/files", url.Values{"purpose": {"dispute_evidence"}})
	assert.Len(t, listed.body["data"], 1)
}

func TestRequestLogging(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	_, srv := setupFake(t, WithLogger(zap.New(core)))

	get(t, srv, "/v1/balance", nil)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "/v1/balance", entry.ContextMap()["path"])
	assert.EqualValues(t, http.StatusOK, entry.ContextMap()["status"])
}
