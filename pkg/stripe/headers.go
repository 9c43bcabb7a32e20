package stripe

import (
	"net/http"
	"strings"

	"github.com/fivetwenty-io/asyncstripe/internal/constants"
)

// ResponseHeaders gives uniform, case-insensitive access to the headers of
// an API response.
type ResponseHeaders struct {
	header http.Header
}

// NewResponseHeaders wraps h. A nil header behaves as an empty one.
func NewResponseHeaders(h http.Header) ResponseHeaders {
	return ResponseHeaders{header: h}
}

// Get returns the first value of the named header, or def when it is absent.
func (h ResponseHeaders) Get(name, def string) string {
	if values := h.header.Values(name); len(values) > 0 {
		return values[0]
	}

	// Headers built by hand may not be canonicalized.
	for key, values := range h.header {
		if strings.EqualFold(key, name) && len(values) > 0 {
			return values[0]
		}
	}

	return def
}

// RequestID returns the Request-Id the API assigned to the call, if any.
func (h ResponseHeaders) RequestID() string {
	return h.Get(constants.HeaderRequestID, "")
}

// Header returns a copy of the underlying header map.
func (h ResponseHeaders) Header() http.Header {
	return h.header.Clone()
}
