package stripeclient

import (
	"context"
	"sync"

	"github.com/fivetwenty-io/asyncstripe/pkg/stripe"
)

var (
	defaultMu     sync.Mutex
	defaultClient stripe.Client
)

// Default returns the process-wide client, building it from the environment
// on first use. An unusable environment falls back to the production hosts
// with no API key.
func Default() stripe.Client {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultClient != nil {
		return defaultClient
	}

	config, err := stripe.ConfigFromEnv()
	if err != nil {
		config = stripe.DefaultConfig()
	}

	c, err := New(context.Background(), config)
	if err != nil {
		config.SkipTLSVerify = false

		c, err = New(context.Background(), config)
		if err != nil {
			c, _ = New(context.Background(), stripe.DefaultConfig())
		}
	}

	defaultClient = c

	return defaultClient
}

// SetDefault replaces the process-wide client. Passing nil makes the next
// Default call rebuild it from the environment.
func SetDefault(c stripe.Client) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	defaultClient = c
}

// SetAPIKey sets the key used by calls on the default client.
func SetAPIKey(key string) {
	Default().SetAPIKey(key)
}

// SetAPIBase sets the base URL of regular calls on the default client.
func SetAPIBase(base string) {
	Default().SetAPIBase(normalizeBase(base))
}

// SetUploadAPIBase sets the base URL of uploads on the default client.
func SetUploadAPIBase(base string) {
	Default().SetUploadAPIBase(normalizeBase(base))
}

// SetAPIVersion pins the API version on the default client.
func SetAPIVersion(version string) {
	Default().SetAPIVersion(version)
}

// APIKey returns the key of the default client.
func APIKey() string {
	return Default().APIKey()
}
