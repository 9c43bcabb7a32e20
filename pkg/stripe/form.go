package stripe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// FileParam is a file to upload as part of a multipart request.
type FileParam struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

type formPair struct {
	key   string
	value string
}

// EncodeForm percent-encodes params with bracket notation for nested values:
// maps become a[b]=c and slices a[0]=c. Keys are emitted in sorted order, nil
// values are skipped and resources are sent as their id.
func EncodeForm(params Params) string {
	pairs := flattenParams(params)

	var sb strings.Builder

	for i, pair := range pairs {
		if i > 0 {
			sb.WriteByte('&')
		}

		sb.WriteString(url.QueryEscape(pair.key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(pair.value))
	}

	return sb.String()
}

// FormValues returns the flattened params as url.Values.
func FormValues(params Params) url.Values {
	values := url.Values{}
	for _, pair := range flattenParams(params) {
		values.Add(pair.key, pair.value)
	}

	return values
}

func flattenParams(params Params) []formPair {
	var pairs []formPair

	for _, key := range sortedKeys(params) {
		pairs = appendValue(pairs, key, params[key])
	}

	return pairs
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

//nolint:cyclop // one case per supported parameter shape
func appendValue(pairs []formPair, key string, value interface{}) []formPair {
	switch v := value.(type) {
	case nil:
		return pairs
	case string:
		return append(pairs, formPair{key, v})
	case json.Number:
		return append(pairs, formPair{key, v.String()})
	case bool:
		return append(pairs, formPair{key, strconv.FormatBool(v)})
	case int:
		return append(pairs, formPair{key, strconv.Itoa(v)})
	case int64:
		return append(pairs, formPair{key, strconv.FormatInt(v, 10)})
	case float64:
		return append(pairs, formPair{key, strconv.FormatFloat(v, 'f', -1, 64)})
	case *FileParam:
		return pairs
	case Resource:
		return append(pairs, formPair{key, v.Base().ID()})
	case Params:
		return appendMap(pairs, key, v)
	case map[string]interface{}:
		return appendMap(pairs, key, v)
	case map[string]string:
		for _, sub := range sortedKeys(v) {
			pairs = append(pairs, formPair{key + "[" + sub + "]", v[sub]})
		}

		return pairs
	case []interface{}:
		for i, item := range v {
			pairs = appendValue(pairs, key+"["+strconv.Itoa(i)+"]", item)
		}

		return pairs
	case []string:
		for i, item := range v {
			pairs = append(pairs, formPair{key + "[" + strconv.Itoa(i) + "]", item})
		}

		return pairs
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		for i := range rv.Len() {
			pairs = appendValue(pairs, key+"["+strconv.Itoa(i)+"]", rv.Index(i).Interface())
		}

		return pairs
	}

	return append(pairs, formPair{key, fmt.Sprint(value)})
}

func appendMap(pairs []formPair, key string, m map[string]interface{}) []formPair {
	for _, sub := range sortedKeys(m) {
		pairs = appendValue(pairs, key+"["+sub+"]", m[sub])
	}

	return pairs
}

// EncodeMultipart encodes params as multipart/form-data. FileParam values
// become file parts; everything else is flattened as in EncodeForm.
func EncodeMultipart(params Params) ([]byte, string, error) {
	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	for _, pair := range flattenParams(params) {
		if err := writer.WriteField(pair.key, pair.value); err != nil {
			return nil, "", fmt.Errorf("writing multipart field %s: %w", pair.key, err)
		}
	}

	for _, key := range sortedKeys(params) {
		file, ok := params[key].(*FileParam)
		if !ok || file == nil {
			continue
		}

		name := file.Filename
		if name == "" {
			name = "blob"
		}

		contentType := file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, key, name))
		header.Set("Content-Type", contentType)

		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("creating multipart file %s: %w", key, err)
		}

		if file.Content != nil {
			if _, err := io.Copy(part, file.Content); err != nil {
				return nil, "", fmt.Errorf("copying multipart file %s: %w", key, err)
			}
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart writer: %w", err)
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}
