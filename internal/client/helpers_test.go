package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/fivetwenty-io/asyncstripe/pkg/stripe"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "sk_test_123"

// recordedRequest is what the stub server saw for one call.
type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Form   url.Values
	Header http.Header
	Files  map[string]string
}

type stubServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
}

// newStubServer starts a server that records every request before handing it
// to handler.
func newStubServer(t *testing.T, handler http.HandlerFunc) *stubServer {
	t.Helper()

	stub := &stubServer{}
	stub.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Form:   url.Values{},
			Files:  map[string]string{},
		}

		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			if err := r.ParseMultipartForm(1 << 20); err == nil {
				rec.Form = r.MultipartForm.Value
				for field, headers := range r.MultipartForm.File {
					rec.Files[field] = headers[0].Filename
				}
			}
		} else if err := r.ParseForm(); err == nil {
			rec.Form = r.PostForm
		}

		stub.mu.Lock()
		stub.requests = append(stub.requests, rec)
		stub.mu.Unlock()

		handler(w, r)
	}))
	t.Cleanup(stub.Close)

	return stub
}

func (s *stubServer) hits() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.requests)
}

func (s *stubServer) last() recordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.requests) == 0 {
		return recordedRequest{}
	}

	return s.requests[len(s.requests)-1]
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Request-Id", "req_test")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// respondWith answers every request with body.
func respondWith(status int, body interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, status, body)
	}
}

// newTestClient builds a client whose regular and upload hosts are baseURL.
func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	client, err := New(context.Background(), &stripe.Config{
		APIKey:        testAPIKey,
		APIBase:       baseURL,
		UploadAPIBase: baseURL,
	})
	require.NoError(t, err)

	return client
}

// awaitT waits for f and fails the test on error.
func awaitT[T any](t *testing.T, f *stripe.Future[T]) T {
	t.Helper()

	value, err := f.Await(context.Background())
	require.NoError(t, err)

	return value
}
