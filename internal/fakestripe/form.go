package fakestripe

import (
	"mime"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/asyncstripe/internal/constants"
)

const maxUploadMemory = 32 << 20

// integer fields are stored as numbers so responses look like the real API.
var integerFields = map[string]bool{
	"amount":             true,
	"amount_off":         true,
	"amount_refunded":    true,
	"application_fee":    true,
	"account_balance":    true,
	"exp_month":          true,
	"exp_year":           true,
	"interval_count":     true,
	"max_redemptions":    true,
	"percent_off":        true,
	"quantity":           true,
	"redeem_by":          true,
	"trial_end":          true,
	"trial_period_days":  true,
	"duration_in_months": true,
}

// parseParams reads the query string or the form body of r into nested
// values, undoing the bracket notation clients encode with.
func parseParams(r *http.Request) (map[string]interface{}, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			return nil, err
		}

		return decodeForm(r.MultipartForm.Value), nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, err
	}

	if r.Method == http.MethodPost {
		return decodeForm(r.PostForm), nil
	}

	return decodeForm(r.Form), nil
}

func decodeForm(values url.Values) map[string]interface{} {
	root := make(map[string]interface{})

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		if len(values[key]) == 0 {
			continue
		}

		insert(root, splitKey(key), values[key][0])
	}

	for key, value := range root {
		if key != "metadata" {
			root[key] = listify(value)
		}
	}

	return root
}

// splitKey turns a[b][c] into [a b c].
func splitKey(key string) []string {
	open := strings.IndexByte(key, '[')
	if open < 0 {
		return []string{key}
	}

	parts := []string{key[:open]}
	rest := key[open:]

	for strings.HasPrefix(rest, "[") {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			break
		}

		parts = append(parts, rest[1:end])
		rest = rest[end+1:]
	}

	return parts
}

func insert(node map[string]interface{}, path []string, value string) {
	for i, part := range path {
		if i == len(path)-1 {
			node[part] = coerce(path, value)

			return
		}

		child, ok := node[part].(map[string]interface{})
		if !ok {
			child = make(map[string]interface{})
			node[part] = child
		}

		node = child
	}
}

func coerce(path []string, value string) interface{} {
	if path[0] == "metadata" {
		return value
	}

	if integerFields[path[len(path)-1]] {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}

	switch value {
	case constants.BooleanTrue:
		return true
	case constants.BooleanFalse:
		return false
	}

	return value
}

// listify converts maps keyed 0..n-1 into slices.
func listify(value interface{}) interface{} {
	m, ok := value.(map[string]interface{})
	if !ok {
		return value
	}

	for k, v := range m {
		m[k] = listify(v)
	}

	if len(m) == 0 {
		return m
	}

	items := make([]interface{}, len(m))

	for k, v := range m {
		idx, err := strconv.Atoi(k)
		if err != nil || idx < 0 || idx >= len(m) {
			return m
		}

		items[idx] = v
	}

	return items
}

func stringParam(params map[string]interface{}, key string) string {
	s, _ := params[key].(string)

	return s
}

func intParam(params map[string]interface{}, key string) (int64, bool) {
	n, ok := params[key].(int64)

	return n, ok
}

func boolParam(params map[string]interface{}, key string, def bool) bool {
	b, ok := params[key].(bool)
	if !ok {
		return def
	}

	return b
}
