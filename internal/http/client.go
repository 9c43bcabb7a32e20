package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fivetwenty-io/asyncstripe/internal/constants"
	"github.com/fivetwenty-io/asyncstripe/pkg/stripe"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
)

// Logger is the logging interface used by the HTTP layer.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Client sends API requests. It never retries: every call results in at
// most one round trip.
type Client struct {
	baseURL      string
	httpClient   *retryablehttp.Client
	logger       Logger
	debug        bool
	userAgent    string
	interceptors *stripe.InterceptorChain
}

// Request is a single outbound call.
type Request struct {
	Method string
	// BaseURL overrides the client's base URL for this call.
	BaseURL     string
	Path        string
	RawQuery    string
	Body        []byte
	ContentType string
	Headers     map[string]string
}

// Response is the raw result of a call.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the User-Agent sent when a request carries none.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithTimeout sets the transport timeout for a single request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// WithInsecureSkipVerify disables TLS certificate verification.
func WithInsecureSkipVerify(skip bool) Option {
	return func(c *Client) {
		if !skip {
			return
		}

		transport := cleanhttp.DefaultPooledTransport()
		//nolint:gosec // only enabled in development mode
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		c.httpClient.HTTPClient.Transport = transport
	}
}

// WithInterceptors runs chain around every call.
func WithInterceptors(chain *stripe.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient = client
	}
}

// NewClient creates a client sending requests to baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.CheckRetry = neverRetry
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = nil
	retryClient.HTTPClient = cleanhttp.DefaultPooledClient()
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout

	client := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: retryClient,
		userAgent:  constants.ClientName,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.debug && client.logger != nil {
		retryClient.Logger = &leveledLogger{logger: client.logger}
	}

	retryClient.HTTPClient = withTracing(retryClient.HTTPClient)

	return client
}

func neverRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	return false, nil
}

// CheckMethod rejects methods the API does not accept.
func CheckMethod(method string) error {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodPost, http.MethodDelete:
		return nil
	default:
		return stripe.NewAPIConnectionError(
			fmt.Sprintf("Unrecognized HTTP method %q. This may indicate a bug in the client bindings.", method),
			fmt.Errorf("%w: %s", stripe.ErrUnrecognizedMethod, method))
	}
}

// Do sends req. Responses with status >= 400 are returned together with the
// classified API error.
//
//nolint:funlen // request and response handling read best in one place
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if err := CheckMethod(req.Method); err != nil {
		return nil, err
	}

	method := strings.ToUpper(req.Method)

	base := c.baseURL
	if req.BaseURL != "" {
		base = strings.TrimSuffix(req.BaseURL, "/")
	}

	target := base + req.Path
	if req.RawQuery != "" {
		target += "?" + req.RawQuery
	}

	intercepted := &stripe.Request{
		Method:  method,
		URL:     target,
		Path:    req.Path,
		Headers: make(http.Header),
		Body:    req.Body,
	}

	for name, value := range req.Headers {
		intercepted.Headers.Set(name, value)
	}

	if req.ContentType != "" {
		intercepted.Headers.Set(constants.HeaderContentType, req.ContentType)
	}

	intercepted.Headers.Set(constants.HeaderAccept, constants.ContentTypeJSON)

	if intercepted.Headers.Get(constants.HeaderUserAgent) == "" && c.userAgent != "" {
		intercepted.Headers.Set(constants.HeaderUserAgent, c.userAgent)
	}

	if c.interceptors != nil {
		if err := c.interceptors.ExecuteRequestInterceptors(ctx, intercepted); err != nil {
			return nil, stripe.NewAPIConnectionError("Request aborted before it was sent.", err)
		}
	}

	var body interface{}
	if len(intercepted.Body) > 0 {
		body = intercepted.Body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, stripe.NewAPIConnectionError("Could not build the request.", err)
	}

	httpReq.Header = intercepted.Headers

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": method,
			"url":    target,
		})
	}

	start := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		connErr := stripe.NewAPIConnectionError(
			"Unexpected error communicating with Stripe. If this problem persists, let us know at support@stripe.com.", err)
		c.afterResponse(ctx, intercepted, &stripe.Response{Error: connErr})

		return nil, connErr
	}

	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		connErr := stripe.NewAPIConnectionError("Could not read the response body.", err)
		c.afterResponse(ctx, intercepted, &stripe.Response{StatusCode: httpResp.StatusCode, Error: connErr})

		return nil, connErr
	}

	response := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status":   httpResp.StatusCode,
			"duration": time.Since(start).String(),
		})
	}

	var apiErr error
	if response.StatusCode >= http.StatusBadRequest {
		apiErr = stripe.ClassifyError(response.StatusCode, respBody, httpResp.Header)
	}

	c.afterResponse(ctx, intercepted, &stripe.Response{
		StatusCode: response.StatusCode,
		Headers:    response.Headers,
		Body:       bytes.Clone(respBody),
		Error:      apiErr,
	})

	return response, apiErr
}

func (c *Client) afterResponse(ctx context.Context, req *stripe.Request, resp *stripe.Response) {
	if c.interceptors == nil {
		return
	}

	if err := c.interceptors.ExecuteResponseInterceptors(ctx, req, resp); err != nil && c.logger != nil {
		c.logger.Warn("response interceptor failed", map[string]interface{}{"error": err.Error()})
	}
}

// Get sends a GET with params in the query string.
func (c *Client) Get(ctx context.Context, path string, params stripe.Params) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, RawQuery: stripe.EncodeForm(params)})
}

// Post sends a POST with params form-encoded in the body.
func (c *Client) Post(ctx context.Context, path string, params stripe.Params) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:      http.MethodPost,
		Path:        path,
		Body:        []byte(stripe.EncodeForm(params)),
		ContentType: constants.ContentTypeForm,
	})
}

// Delete sends a DELETE with params in the query string.
func (c *Client) Delete(ctx context.Context, path string, params stripe.Params) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path, RawQuery: stripe.EncodeForm(params)})
}

// IsConnectionError reports whether err came from the transport rather than
// from the API.
func IsConnectionError(err error) bool {
	var connErr *stripe.APIConnectionError

	return errors.As(err, &connErr)
}

type leveledLogger struct {
	logger Logger
}

func (l *leveledLogger) fields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}

	return fields
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, l.fields(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, l.fields(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, l.fields(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, l.fields(keysAndValues))
}
