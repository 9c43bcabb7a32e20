package stripe

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/fivetwenty-io/asyncstripe/internal/constants"
)

// Config represents client configuration for building a Client.
//
// # Credential and endpoints
//
// APIKey is sent as a Bearer token on every call unless a call overrides it
// with WithAPIKey, or operates on an object fetched with another key. Calls
// fail with an AuthenticationError, before anything is sent, when no key is
// available. APIBase and UploadAPIBase default to the production hosts.
//
// # Timeouts, retries, and TLS
//
// The client never retries. HTTPTimeout is handed to the transport as is;
// the request pipeline adds no deadline of its own. SkipTLSVerify is only
// honored when STRIPE_DEV_MODE is "true" or "1"; do not use it in production.
type Config struct {
	// APIKey: secret key used to sign requests.
	APIKey string `env:"STRIPE_API_KEY"`
	// APIBase: base URL for regular API calls.
	APIBase string `env:"STRIPE_API_BASE" envDefault:"https://api.stripe.com"`
	// UploadAPIBase: base URL for file uploads.
	UploadAPIBase string `env:"STRIPE_UPLOAD_API_BASE" envDefault:"https://uploads.stripe.com"`
	// APIVersion: optional version pin sent as Stripe-Version.
	APIVersion string `env:"STRIPE_API_VERSION"`
	// SkipTLSVerify: when true, TLS certificates are not verified. Only
	// honored when STRIPE_DEV_MODE is set.
	SkipTLSVerify bool `env:"STRIPE_SKIP_TLS_VERIFY"`
	// HTTPTimeout: transport timeout for a single request.
	HTTPTimeout time.Duration `env:"STRIPE_HTTP_TIMEOUT" envDefault:"80s"`
	// Debug: enables request/response logging when a Logger is provided.
	Debug bool `env:"STRIPE_DEBUG"`
	// UserAgent: overrides the default User-Agent header.
	UserAgent string `env:"STRIPE_USER_AGENT"`

	// Logger: optional structured logger used by the HTTP layer and clients.
	Logger Logger
	// Interceptors: optional request/response hooks run around every call.
	Interceptors *InterceptorChain
}

// DefaultConfig returns a Config pointing at the production hosts.
func DefaultConfig() *Config {
	return &Config{
		APIBase:       constants.DefaultAPIBase,
		UploadAPIBase: constants.DefaultUploadAPIBase,
		HTTPTimeout:   constants.DefaultHTTPTimeout,
	}
}

// ConfigFromEnv builds a Config from STRIPE_* environment variables. Fields
// whose variable is absent keep the DefaultConfig values.
func ConfigFromEnv() (*Config, error) {
	config := DefaultConfig()

	if err := config.Parse(); err != nil {
		return nil, err
	}

	return config, nil
}

// envFields copies a field from the parsed environment, keyed by variable.
var envFields = map[string]func(dst, src *Config){
	"STRIPE_API_KEY":         func(dst, src *Config) { dst.APIKey = src.APIKey },
	"STRIPE_API_BASE":        func(dst, src *Config) { dst.APIBase = src.APIBase },
	"STRIPE_UPLOAD_API_BASE": func(dst, src *Config) { dst.UploadAPIBase = src.UploadAPIBase },
	"STRIPE_API_VERSION":     func(dst, src *Config) { dst.APIVersion = src.APIVersion },
	"STRIPE_SKIP_TLS_VERIFY": func(dst, src *Config) { dst.SkipTLSVerify = src.SkipTLSVerify },
	"STRIPE_HTTP_TIMEOUT":    func(dst, src *Config) { dst.HTTPTimeout = src.HTTPTimeout },
	"STRIPE_DEBUG":           func(dst, src *Config) { dst.Debug = src.Debug },
	"STRIPE_USER_AGENT":      func(dst, src *Config) { dst.UserAgent = src.UserAgent },
}

// Parse fills the Config from the environment. Fields already set are
// overwritten only by variables that are present and non-empty.
func (c *Config) Parse() error {
	var present []string

	parsed := &Config{}

	err := env.Parse(parsed, env.Options{
		OnSet: func(key string, value interface{}, isDefault bool) {
			if !isDefault && value != "" {
				present = append(present, key)
			}
		},
	})
	if err != nil {
		return fmt.Errorf("parsing stripe config from environment: %w", err)
	}

	for _, key := range present {
		if apply, ok := envFields[key]; ok {
			apply(c, parsed)
		}
	}

	return nil
}

// WithDefaults returns a copy of c with empty fields filled in.
func (c *Config) WithDefaults() *Config {
	out := *c

	if out.APIBase == "" {
		out.APIBase = constants.DefaultAPIBase
	}

	if out.UploadAPIBase == "" {
		out.UploadAPIBase = constants.DefaultUploadAPIBase
	}

	if out.HTTPTimeout <= 0 {
		out.HTTPTimeout = constants.DefaultHTTPTimeout
	}

	return &out
}
