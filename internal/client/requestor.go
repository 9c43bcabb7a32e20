package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"sync"

	"github.com/fivetwenty-io/asyncstripe/internal/constants"
	stripehttp "github.com/fivetwenty-io/asyncstripe/internal/http"
	"github.com/fivetwenty-io/asyncstripe/pkg/stripe"
)

// Version is reported in the client user agent blob.
const Version = "1.0.0"

const noAPIKeyMessage = "No API key provided. (HINT: set your API key using " +
	`"stripeclient.SetAPIKey(<API-KEY>)" or the APIKey field of stripe.Config. ` +
	"You can generate API keys from the Stripe web interface. " +
	"See https://stripe.com/api for details, or email support@stripe.com if you have any questions.)"

// settings is the mutable configuration shared by every call of a client.
type settings struct {
	mu         sync.RWMutex
	apiKey     string
	apiBase    string
	uploadBase string
	apiVersion string
}

type settingsSnapshot struct {
	apiKey     string
	apiBase    string
	uploadBase string
	apiVersion string
}

func (s *settings) snapshot() settingsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return settingsSnapshot{
		apiKey:     s.apiKey,
		apiBase:    s.apiBase,
		uploadBase: s.uploadBase,
		apiVersion: s.apiVersion,
	}
}

func (s *settings) update(fn func(s *settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(s)
}

// call describes one operation before its settings are resolved.
type call struct {
	method    string
	path      string
	params    stripe.Params
	upload    bool
	multipart bool
	// owner supplies the default credential and connected account.
	owner *stripe.Object
	opts  []stripe.RequestOption
}

// requestContext is the snapshot a call is sent with. It is built once, when
// the call starts.
type requestContext struct {
	method         string
	path           string
	params         stripe.Params
	baseURL        string
	apiKey         string
	account        string
	apiVersion     string
	idempotencyKey string
	extraHeaders   map[string]string
	multipart      bool
}

// requestor is the single path every operation takes to the network.
type requestor struct {
	httpClient *stripehttp.Client
	settings   *settings
	logger     stripe.Logger
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}

// prepare snapshots the settings and validates the call. Failures here mean
// nothing is sent.
func (r *requestor) prepare(c call) (*requestContext, error) {
	snap := r.settings.snapshot()
	options := stripe.ApplyRequestOptions(c.opts...)

	var ownerKey, ownerAccount string
	if c.owner != nil {
		ownerKey = c.owner.APIKey()
		ownerAccount = c.owner.StripeAccount()
	}

	apiKey := firstNonEmpty(options.APIKey, ownerKey, snap.apiKey)
	if apiKey == "" {
		return nil, stripe.NewAuthenticationError(noAPIKeyMessage)
	}

	if err := stripehttp.CheckMethod(c.method); err != nil {
		return nil, err
	}

	baseURL := snap.apiBase
	if c.upload {
		baseURL = snap.uploadBase
	}

	return &requestContext{
		method:         c.method,
		path:           c.path,
		params:         c.params,
		baseURL:        baseURL,
		apiKey:         apiKey,
		account:        firstNonEmpty(options.StripeAccount, ownerAccount),
		apiVersion:     snap.apiVersion,
		idempotencyKey: options.IdempotencyKey,
		extraHeaders:   options.Headers,
		multipart:      c.multipart,
	}, nil
}

func (r *requestor) clientUserAgent() string {
	blob, _ := json.Marshal(map[string]string{
		"bindings_version": Version,
		"lang":             constants.ClientLang,
		"lang_version":     runtime.Version(),
		"publisher":        constants.ClientPublisher,
		"httplib":          constants.ClientHTTPLib,
		"uname":            runtime.GOOS + " " + runtime.GOARCH,
	})

	return string(blob)
}

func (r *requestor) headers(rc *requestContext) map[string]string {
	headers := map[string]string{
		constants.HeaderClientUserAgent: r.clientUserAgent(),
		constants.HeaderAuthorization:   "Bearer " + rc.apiKey,
	}

	if rc.account != "" {
		headers[constants.HeaderStripeAccount] = rc.account
	}

	if rc.apiVersion != "" {
		headers[constants.HeaderStripeVersion] = rc.apiVersion
	}

	if rc.idempotencyKey != "" {
		headers[constants.HeaderIdempotencyKey] = rc.idempotencyKey
	}

	for name, value := range rc.extraHeaders {
		headers[name] = value
	}

	return headers
}

// send performs the round trip and decodes the JSON body.
func (r *requestor) send(ctx context.Context, rc *requestContext) (interface{}, error) {
	req := &stripehttp.Request{
		Method:  rc.method,
		BaseURL: rc.baseURL,
		Path:    rc.path,
		Headers: r.headers(rc),
	}

	switch {
	case rc.method != http.MethodPost:
		req.RawQuery = stripe.EncodeForm(rc.params)
	case rc.multipart:
		body, contentType, err := stripe.EncodeMultipart(rc.params)
		if err != nil {
			return nil, stripe.NewAPIConnectionError("Could not encode the upload.", err)
		}

		req.Body = body
		req.ContentType = contentType
	default:
		req.Body = []byte(stripe.EncodeForm(rc.params))
		req.ContentType = constants.ContentTypeForm
	}

	resp, err := r.httpClient.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	var decoded interface{}

	decoder := json.NewDecoder(bytes.NewReader(resp.Body))
	decoder.UseNumber()

	if err := decoder.Decode(&decoded); err != nil {
		return nil, &stripe.APIError{ErrorInfo: stripe.ErrorInfo{
			Message: fmt.Sprintf("Invalid response body from API: %q (HTTP response code was %d)",
				resp.Body, resp.StatusCode),
			HTTPStatus: resp.StatusCode,
			HTTPBody:   string(resp.Body),
			Headers:    stripe.NewResponseHeaders(resp.Headers),
		}}
	}

	return decoded, nil
}

// request runs c and hands the decoded payload to handle. Calls that fail
// validation resolve immediately without touching the network.
func request[T any](
	ctx context.Context,
	r *requestor,
	c call,
	handle func(raw interface{}, rc *requestContext) (T, error),
) *stripe.Future[T] {
	rc, err := r.prepare(c)
	if err != nil {
		return stripe.Rejected[T](err)
	}

	return stripe.Go(ctx, func(ctx context.Context) (T, error) {
		raw, err := r.send(ctx, rc)
		if err != nil {
			var zero T

			return zero, err
		}

		return handle(raw, rc)
	})
}

// perform runs c and materializes whatever the API returned.
func (r *requestor) perform(ctx context.Context, c call) *stripe.Future[interface{}] {
	return request(ctx, r, c, func(raw interface{}, rc *requestContext) (interface{}, error) {
		return stripe.Materialize(raw, rc.apiKey, rc.account), nil
	})
}

func (r *requestor) debug(msg string, fields map[string]interface{}) {
	if r.logger != nil {
		r.logger.Debug(msg, fields)
	}
}

func (r *requestor) warn(msg string, fields map[string]interface{}) {
	if r.logger != nil {
		r.logger.Warn(msg, fields)
	}
}

func invalidPayload(raw interface{}) error {
	return &stripe.APIError{ErrorInfo: stripe.ErrorInfo{
		Message:  fmt.Sprintf("%s: %T", stripe.ErrUnexpectedType, raw),
		JSONBody: raw,
	}}
}

// mergeInto folds a response payload into obj, the one way every operation
// updates an existing object.
func mergeInto[T stripe.Resource](obj T, raw interface{}, rc *requestContext, partial bool) (T, error) {
	values, ok := raw.(map[string]interface{})
	if !ok {
		var zero T

		return zero, invalidPayload(raw)
	}

	base := obj.Base()
	base.Bind(rc.apiKey, rc.account)
	base.Merge(values, partial)

	return obj, nil
}

// mergeField folds raw into obj under field and returns the materialized
// value as U.
func mergeField[T stripe.Resource, U stripe.Resource](obj T, field string, raw interface{}, rc *requestContext, newFn func() U) (U, error) {
	if _, err := mergeInto(obj, map[string]interface{}{field: raw}, rc, true); err != nil {
		var zero U

		return zero, err
	}

	if typed, ok := obj.Base().Get(field).(U); ok {
		return typed, nil
	}

	return stripe.MaterializeAs(raw, rc.apiKey, rc.account, newFn)
}
