package stripe_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/fivetwenty-io/asyncstripe/pkg/stripe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyError(t *testing.T) {
	t.Parallel()

	header := http.Header{}
	header.Set("Request-Id", "req_42")

	tests := []struct {
		name    string
		status  int
		body    string
		check   func(t *testing.T, err error)
		message string
	}{
		{
			name:   "400 is an invalid request",
			status: http.StatusBadRequest,
			body:   `{"error":{"type":"invalid_request_error","message":"Missing amount","param":"amount"}}`,
			check: func(t *testing.T, err error) {
				t.Helper()

				target := &stripe.InvalidRequestError{}
				require.ErrorAs(t, err, &target)
				assert.Equal(t, "amount", target.Param)
			},
			message: "Request req_42: Missing amount",
		},
		{
			name:   "404 is an invalid request",
			status: http.StatusNotFound,
			body:   `{"error":{"message":"No such customer: cus_x","param":"id"}}`,
			check: func(t *testing.T, err error) {
				t.Helper()
				assert.True(t, stripe.IsNotFound(err))
			},
			message: "Request req_42: No such customer: cus_x",
		},
		{
			name:   "401 is an authentication error",
			status: http.StatusUnauthorized,
			body:   `{"error":{"message":"Invalid API Key provided"}}`,
			check: func(t *testing.T, err error) {
				t.Helper()
				assert.True(t, stripe.IsAuthenticationError(err))
			},
			message: "Request req_42: Invalid API Key provided",
		},
		{
			name:   "402 is a card error",
			status: http.StatusPaymentRequired,
			body:   `{"error":{"message":"Your card was declined.","code":"card_declined","param":"number"}}`,
			check: func(t *testing.T, err error) {
				t.Helper()

				target := &stripe.CardError{}
				require.ErrorAs(t, err, &target)
				assert.Equal(t, "card_declined", target.Code)
				assert.Equal(t, "number", target.Param)
			},
			message: "Request req_42: Your card was declined.",
		},
		{
			name:   "other statuses are API errors",
			status: http.StatusTooManyRequests,
			body:   `{"error":{"message":"Too many requests"}}`,
			check: func(t *testing.T, err error) {
				t.Helper()
				assert.True(t, stripe.IsAPIError(err))
			},
			message: "Request req_42: Too many requests",
		},
		{
			name:   "missing error record",
			status: http.StatusNotFound,
			body:   `{"unexpected":true}`,
			check: func(t *testing.T, err error) {
				t.Helper()
				assert.True(t, stripe.IsAPIError(err))
				assert.False(t, stripe.IsInvalidRequestError(err))
			},
			message: `Request req_42: Invalid response object from API: "{\"unexpected\":true}" (HTTP response code was 404)`,
		},
		{
			name:   "non JSON body",
			status: http.StatusBadGateway,
			body:   `<html>bad gateway</html>`,
			check: func(t *testing.T, err error) {
				t.Helper()
				assert.True(t, stripe.IsAPIError(err))
			},
			message: `Request req_42: Invalid response object from API: "<html>bad gateway</html>" (HTTP response code was 502)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := stripe.ClassifyError(tt.status, []byte(tt.body), header)
			require.Error(t, err)
			tt.check(t, err)
			assert.Equal(t, tt.message, err.Error())
			assert.Equal(t, tt.status, stripe.HTTPStatus(err))
		})
	}
}

func TestClassifyError_KeepsResponseDetail(t *testing.T) {
	t.Parallel()

	body := `{"error":{"message":"Missing amount","param":"amount"}}`
	err := stripe.ClassifyError(http.StatusBadRequest, []byte(body), http.Header{"request-id": []string{"req_lower"}})

	target := &stripe.InvalidRequestError{}
	require.ErrorAs(t, err, &target)
	assert.Equal(t, body, target.HTTPBody)
	assert.Equal(t, "req_lower", target.RequestID())

	parsed, ok := target.JSONBody.(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, parsed, "error")
}

func TestErrorWithoutRequestID(t *testing.T) {
	t.Parallel()

	err := stripe.NewAuthenticationError("No API key provided.")
	assert.Equal(t, "No API key provided.", err.Error())
	assert.Equal(t, 0, stripe.HTTPStatus(err))
}

func TestAuthenticationError_Unwrap(t *testing.T) {
	t.Parallel()

	missing := stripe.NewAuthenticationError("No API key provided.")
	assert.ErrorIs(t, missing, stripe.ErrNoAPIKey)

	rejected := stripe.ClassifyError(http.StatusUnauthorized,
		[]byte(`{"error": {"message": "Invalid API Key provided: sk_test_***"}}`), nil)
	assert.True(t, stripe.IsAuthenticationError(rejected))
	assert.NotErrorIs(t, rejected, stripe.ErrNoAPIKey)
}

func TestAPIConnectionError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := stripe.NewAPIConnectionError("Unexpected error communicating with Stripe.", cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, stripe.IsAPIConnectionError(err))
	assert.False(t, stripe.IsAPIError(err))
}
