package stripe

import "github.com/google/uuid"

// RequestOptions are per-call overrides.
type RequestOptions struct {
	// IdempotencyKey is sent as Idempotency-Key when set.
	IdempotencyKey string
	// StripeAccount is sent as Stripe-Account when set.
	StripeAccount string
	// APIKey replaces the client's credential for this call.
	APIKey string
	// Headers are added to the request as is.
	Headers map[string]string
}

// RequestOption configures a single call.
type RequestOption func(*RequestOptions)

// WithIdempotencyKey attaches an Idempotency-Key header to the call.
func WithIdempotencyKey(key string) RequestOption {
	return func(o *RequestOptions) {
		o.IdempotencyKey = key
	}
}

// WithStripeAccount makes the call on behalf of a connected account.
func WithStripeAccount(account string) RequestOption {
	return func(o *RequestOptions) {
		o.StripeAccount = account
	}
}

// WithAPIKey signs the call with key instead of the client's credential.
func WithAPIKey(key string) RequestOption {
	return func(o *RequestOptions) {
		o.APIKey = key
	}
}

// WithHeader adds an extra request header.
func WithHeader(name, value string) RequestOption {
	return func(o *RequestOptions) {
		if o.Headers == nil {
			o.Headers = make(map[string]string)
		}

		o.Headers[name] = value
	}
}

// ApplyRequestOptions folds opts into a RequestOptions value.
func ApplyRequestOptions(opts ...RequestOption) *RequestOptions {
	options := &RequestOptions{}

	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	return options
}

// NewIdempotencyKey returns a random key suitable for WithIdempotencyKey.
func NewIdempotencyKey() string {
	return uuid.NewString()
}
