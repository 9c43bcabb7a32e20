package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// API endpoints.
const (
	// DefaultAPIBase is the base URL every regular API call is issued against.
	DefaultAPIBase = "https://api.stripe.com"

	// DefaultUploadAPIBase is the base URL used for file uploads.
	DefaultUploadAPIBase = "https://uploads.stripe.com"

	// APIPathPrefix is prepended to every resource path.
	APIPathPrefix = "/v1"
)

// Request headers.
const (
	HeaderAuthorization   = "Authorization"
	HeaderUserAgent       = "User-Agent"
	HeaderClientUserAgent = "X-Stripe-Client-User-Agent"
	HeaderStripeAccount   = "Stripe-Account"
	HeaderStripeVersion   = "Stripe-Version"
	HeaderIdempotencyKey  = "Idempotency-Key"
	HeaderRequestID       = "Request-Id"
	HeaderContentType     = "Content-Type"
	HeaderAccept          = "Accept"
)

// Content types.
const (
	ContentTypeForm = "application/x-www-form-urlencoded"
	ContentTypeJSON = "application/json"
)

// Client identification.
const (
	// ClientName is sent as the User-Agent.
	ClientName = "asyncstripe"

	// ClientPublisher names the publisher in the client user agent blob.
	ClientPublisher = "fivetwenty-io"

	// ClientLang names the language in the client user agent blob.
	ClientLang = "go"

	// ClientHTTPLib names the transport in the client user agent blob.
	ClientHTTPLib = "go-retryablehttp"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 80 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second
)

// Pagination and display limits.
const (
	// DefaultPageSize is the number of items requested per page by the CLI.
	DefaultPageSize = 10

	// MaxPageSize is the largest page the API will return.
	MaxPageSize = 100
)

// Output formats.
const (
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTable = "table"

	// JSONIndentSize is the indentation used for pretty JSON output.
	JSONIndentSize = 2
)

// Boolean string representations.
const (
	BooleanTrue  = "true"
	BooleanFalse = "false"
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// Masked replaces secrets in displayed configuration.
	Masked = "***"

	// SecretVisiblePrefix is how many leading characters of a secret stay visible.
	SecretVisiblePrefix = 8
)
