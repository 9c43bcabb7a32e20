// Package fakestripe serves an in-memory imitation of the Stripe REST API for
// tests and local development.
package fakestripe

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fivetwenty-io/asyncstripe/internal/constants"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// DefaultAccountID is the platform account every key belongs to.
const DefaultAccountID = "acct_fakeplatform01"

// RecordedRequest is one request as the server saw it.
type RecordedRequest struct {
	Method         string
	Path           string
	Params         map[string]interface{}
	APIKey         string
	StripeAccount  string
	StripeVersion  string
	IdempotencyKey string
}

// Server is an http.Handler emulating the subset of the API the client uses.
type Server struct {
	store     *Store
	router    chi.Router
	logger    *zap.Logger
	apiKeys   map[string]bool
	accountID string

	mu       sync.Mutex
	replays  map[string]cachedResponse
	requests []RecordedRequest
}

type cachedResponse struct {
	status int
	body   []byte
}

// Option configures a Server.
type Option func(*Server)

// WithLogger logs every request through logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAPIKeys restricts the keys the server accepts. By default any key
// starting with sk_ is accepted.
func WithAPIKeys(keys ...string) Option {
	return func(s *Server) {
		for _, key := range keys {
			s.apiKeys[key] = true
		}
	}
}

// WithStore serves the given store instead of an empty one.
func WithStore(store *Store) Option {
	return func(s *Server) {
		s.store = store
	}
}

// NewServer builds a server with its routes mounted.
func NewServer(opts ...Option) *Server {
	s := &Server{
		store:     NewStore(),
		logger:    zap.NewNop(),
		apiKeys:   make(map[string]bool),
		accountID: DefaultAccountID,
		replays:   make(map[string]cachedResponse),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.store.Insert(collectionAccounts, "acct", Record{
		"id":               s.accountID,
		"object":           "account",
		"email":            "platform@example.com",
		"charges_enabled":  true,
		"country":          "US",
		"default_currency": "usd",
		"metadata":         Record{},
	})

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Route(constants.APIPathPrefix, s.Routes)
	s.router = r

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Store returns the backing store.
func (s *Server) Store() *Store {
	return s.store
}

// Requests returns the authenticated requests received so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)

	return out
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Debug("fake stripe request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func bearerKey(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}

	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := bearerKey(r)
		if key == "" {
			writeError(w, &apiError{
				status:  http.StatusUnauthorized,
				typ:     "invalid_request_error",
				message: "You did not provide an API key.",
			})

			return
		}

		if !s.keyAllowed(key) {
			writeError(w, &apiError{
				status:  http.StatusUnauthorized,
				typ:     "invalid_request_error",
				message: "Invalid API Key provided: " + maskKey(key),
			})

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) keyAllowed(key string) bool {
	if len(s.apiKeys) > 0 {
		return s.apiKeys[key]
	}

	return strings.HasPrefix(key, "sk_")
}

func maskKey(key string) string {
	if len(key) <= 12 {
		return strings.Repeat("*", len(key))
	}

	return key[:8] + strings.Repeat("*", len(key)-12) + key[len(key)-4:]
}

// responseRecorder captures the status and body for idempotent replays.
type responseRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)

	return r.ResponseWriter.Write(b)
}

// idempotency replays the stored response of a POST sent again with the same
// Idempotency-Key.
func (s *Server) idempotency(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("Idempotency-Key")
		if r.Method != http.MethodPost || key == "" {
			next.ServeHTTP(w, r)

			return
		}

		cacheKey := bearerKey(r) + "|" + key

		s.mu.Lock()
		cached, ok := s.replays[cacheKey]
		s.mu.Unlock()

		if ok {
			w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
			w.Header().Set("Idempotent-Replayed", "true")
			w.WriteHeader(cached.status)
			_, _ = w.Write(cached.body)

			return
		}

		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.mu.Lock()
		s.replays[cacheKey] = cachedResponse{status: rec.status, body: rec.body.Bytes()}
		s.mu.Unlock()
	})
}

// record keeps a copy of every authenticated request and tags the response
// with a request id.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		params, err := parseParams(r)
		if err != nil {
			writeError(w, invalidRequest("Invalid request body: "+err.Error(), ""))

			return
		}

		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method:         r.Method,
			Path:           r.URL.Path,
			Params:         params,
			APIKey:         bearerKey(r),
			StripeAccount:  r.Header.Get("Stripe-Account"),
			StripeVersion:  r.Header.Get("Stripe-Version"),
			IdempotencyKey: r.Header.Get("Idempotency-Key"),
		})
		s.mu.Unlock()

		w.Header().Set(constants.HeaderRequestID, NewID("req"))
		next.ServeHTTP(w, r)
	})
}

// apiError is rendered as the API's error envelope.
type apiError struct {
	status  int
	typ     string
	message string
	param   string
	code    string
}

func (e *apiError) Error() string {
	return e.message
}

func invalidRequest(message, param string) *apiError {
	return &apiError{
		status:  http.StatusBadRequest,
		typ:     "invalid_request_error",
		message: message,
		param:   param,
	}
}

func notFound(object, id string) *apiError {
	return &apiError{
		status:  http.StatusNotFound,
		typ:     "invalid_request_error",
		message: "No such " + object + ": " + id,
		param:   "id",
	}
}

func missingParam(param string) *apiError {
	return invalidRequest("Missing required param: "+param+".", param)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	e, ok := err.(*apiError)
	if !ok {
		e = &apiError{status: http.StatusInternalServerError, typ: "api_error", message: err.Error()}
	}

	body := map[string]interface{}{
		"type":    e.typ,
		"message": e.message,
	}

	if e.param != "" {
		body["param"] = e.param
	}

	if e.code != "" {
		body["code"] = e.code
	}

	writeJSON(w, e.status, map[string]interface{}{"error": body})
}
