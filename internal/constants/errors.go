package constants

import "errors"

// Configuration errors.
var (
	ErrNoAPIKeyConfigured = errors.New("no API key configured, use 'asyncstripe login' or set STRIPE_API_KEY")
	ErrUnknownConfigKey   = errors.New("unknown configuration key")
	ErrSkipTLSOnlyInDev   = errors.New("disabling certificate verification is only allowed in development (set STRIPE_DEV_MODE=true)")
)

// Validation errors.
var (
	ErrInvalidOutputFormat = errors.New("invalid output format, expected table, json or yaml")
	ErrInvalidParamFormat  = errors.New("invalid parameter format, expected key=value")
	ErrEmptyAPIKey         = errors.New("API key cannot be empty")
	ErrInvalidLimit        = errors.New("limit must be between 1 and 100")
)
