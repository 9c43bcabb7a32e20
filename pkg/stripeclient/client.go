package stripeclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/asyncstripe/internal/client"
	"github.com/fivetwenty-io/asyncstripe/pkg/stripe"
)

// New creates a new Stripe API client.
func New(ctx context.Context, config *stripe.Config) (stripe.Client, error) {
	if config == nil {
		return nil, stripe.ErrConfigRequired
	}

	normalized := *config
	normalized.APIBase = normalizeBase(config.APIBase)
	normalized.UploadAPIBase = normalizeBase(config.UploadAPIBase)

	c, err := client.New(ctx, &normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// normalizeBase trims a trailing slash and assumes https when no scheme is
// given.
func normalizeBase(base string) string {
	base = strings.TrimSuffix(strings.TrimSpace(base), "/")
	if base == "" {
		return ""
	}

	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}

	return base
}

// NewWithAPIKey creates a client for the production hosts using key.
func NewWithAPIKey(ctx context.Context, key string) (stripe.Client, error) {
	config := stripe.DefaultConfig()
	config.APIKey = key

	return New(ctx, config)
}

// NewFromEnv creates a client configured from STRIPE_* environment variables.
func NewFromEnv(ctx context.Context) (stripe.Client, error) {
	config, err := stripe.ConfigFromEnv()
	if err != nil {
		return nil, err
	}

	return New(ctx, config)
}
