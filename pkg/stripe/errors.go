package stripe

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrorInfo is the detail shared by every API error variant.
type ErrorInfo struct {
	Message    string          `json:"message"`
	HTTPStatus int             `json:"http_status,omitempty"`
	HTTPBody   string          `json:"-"`
	JSONBody   interface{}     `json:"-"`
	Headers    ResponseHeaders `json:"-"`
}

// Error implements the error interface.
func (e *ErrorInfo) Error() string {
	if id := e.Headers.RequestID(); id != "" {
		return fmt.Sprintf("Request %s: %s", id, e.Message)
	}

	return e.Message
}

// RequestID returns the Request-Id header of the failed response.
func (e *ErrorInfo) RequestID() string {
	return e.Headers.RequestID()
}

// AuthenticationError means the API key was missing or rejected. Err is
// ErrNoAPIKey when the call failed before dispatch for lack of a key.
type AuthenticationError struct {
	ErrorInfo
	Err error `json:"-"`
}

// Unwrap returns the cause, if any.
func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// InvalidRequestError means the request was malformed or named a missing
// resource. Param names the offending parameter when the API reported one.
type InvalidRequestError struct {
	ErrorInfo
	Param string `json:"param,omitempty"`
}

// CardError means a payment was declined. Code carries the decline reason.
type CardError struct {
	ErrorInfo
	Param string `json:"param,omitempty"`
	Code  string `json:"code,omitempty"`
}

// APIError is the catch-all for server failures and unparseable responses.
type APIError struct {
	ErrorInfo
}

// APIConnectionError means the request could not be sent or its response
// could not be read.
type APIConnectionError struct {
	ErrorInfo
	Err error `json:"-"`
}

// Unwrap returns the transport error, if any.
func (e *APIConnectionError) Unwrap() error {
	return e.Err
}

// Common static errors that can be wrapped with context.
var (
	ErrEmptyStringValue   = errors.New("you cannot set a value to an empty string, use Unset to remove the key")
	ErrNoAPIKey           = errors.New("no API key provided")
	ErrUnrecognizedMethod = errors.New("unrecognized HTTP method")
	ErrNotAddressable     = errors.New("object has no instance path")
	ErrUnexpectedType     = errors.New("unexpected object type in response")
	ErrNoMoreItems        = errors.New("no more items")
	ErrConfigRequired     = errors.New("config is required")
	ErrPanicked           = errors.New("call panicked")
)

// NewAuthenticationError builds the error returned when no API key is set.
func NewAuthenticationError(message string) *AuthenticationError {
	return &AuthenticationError{ErrorInfo: ErrorInfo{Message: message}, Err: ErrNoAPIKey}
}

// NewInvalidRequestError builds a request error raised before dispatch.
func NewInvalidRequestError(message, param string) *InvalidRequestError {
	return &InvalidRequestError{ErrorInfo: ErrorInfo{Message: message}, Param: param}
}

// NewAPIConnectionError wraps a transport failure.
func NewAPIConnectionError(message string, err error) *APIConnectionError {
	return &APIConnectionError{ErrorInfo: ErrorInfo{Message: message}, Err: err}
}

type errorBody struct {
	Message string
	Param   string
	Code    string
}

// ClassifyError maps a failed response onto the error taxonomy. The variant
// depends only on status and on whether body carries an "error" record.
func ClassifyError(status int, body []byte, header http.Header) error {
	info := ErrorInfo{
		HTTPStatus: status,
		HTTPBody:   string(body),
		Headers:    NewResponseHeaders(header),
	}

	var parsed interface{}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	if err := decoder.Decode(&parsed); err == nil {
		info.JSONBody = parsed
	}

	detail, ok := extractErrorBody(parsed)
	if !ok {
		info.Message = fmt.Sprintf("Invalid response object from API: %q (HTTP response code was %d)", body, status)

		return &APIError{ErrorInfo: info}
	}

	info.Message = detail.Message

	switch status {
	case http.StatusBadRequest, http.StatusNotFound:
		return &InvalidRequestError{ErrorInfo: info, Param: detail.Param}
	case http.StatusUnauthorized:
		return &AuthenticationError{ErrorInfo: info}
	case http.StatusPaymentRequired:
		return &CardError{ErrorInfo: info, Param: detail.Param, Code: detail.Code}
	default:
		return &APIError{ErrorInfo: info}
	}
}

func extractErrorBody(parsed interface{}) (errorBody, bool) {
	record, ok := parsed.(map[string]interface{})
	if !ok {
		return errorBody{}, false
	}

	raw, ok := record["error"].(map[string]interface{})
	if !ok {
		return errorBody{}, false
	}

	field := func(key string) string {
		if s, ok := raw[key].(string); ok {
			return s
		}

		return ""
	}

	return errorBody{Message: field("message"), Param: field("param"), Code: field("code")}, true
}

// IsAuthenticationError checks if the error is an AuthenticationError.
func IsAuthenticationError(err error) bool {
	var target *AuthenticationError

	return errors.As(err, &target)
}

// IsInvalidRequestError checks if the error is an InvalidRequestError.
func IsInvalidRequestError(err error) bool {
	var target *InvalidRequestError

	return errors.As(err, &target)
}

// IsCardError checks if the error is a CardError.
func IsCardError(err error) bool {
	var target *CardError

	return errors.As(err, &target)
}

// IsAPIError checks if the error is an APIError.
func IsAPIError(err error) bool {
	var target *APIError

	return errors.As(err, &target)
}

// IsAPIConnectionError checks if the error is an APIConnectionError.
func IsAPIConnectionError(err error) bool {
	var target *APIConnectionError

	return errors.As(err, &target)
}

// IsNotFound checks if the error is a 404 from the API.
func IsNotFound(err error) bool {
	var target *InvalidRequestError
	if errors.As(err, &target) {
		return target.HTTPStatus == http.StatusNotFound
	}

	return false
}

// HTTPStatus returns the status code carried by an API error, or 0.
func HTTPStatus(err error) int {
	var (
		auth    *AuthenticationError
		invalid *InvalidRequestError
		card    *CardError
		api     *APIError
		conn    *APIConnectionError
	)

	switch {
	case errors.As(err, &auth):
		return auth.HTTPStatus
	case errors.As(err, &invalid):
		return invalid.HTTPStatus
	case errors.As(err, &card):
		return card.HTTPStatus
	case errors.As(err, &api):
		return api.HTTPStatus
	case errors.As(err, &conn):
		return conn.HTTPStatus
	default:
		return 0
	}
}
