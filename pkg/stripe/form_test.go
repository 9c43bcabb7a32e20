package stripe_test

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/url"
	"strings"
	"testing"

	"github.com/fivetwenty-io/asyncstripe/pkg/stripe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeForm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		params   stripe.Params
		expected string
	}{
		{"empty", nil, ""},
		{"sorted scalars", stripe.Params{"b": 2, "a": "x y", "c": true}, "a=x+y&b=2&c=true"},
		{"nil skipped", stripe.Params{"a": nil, "b": "1"}, "b=1"},
		{"nested map", stripe.Params{"metadata": map[string]interface{}{"order": "42", "tier": "gold"}},
			"metadata%5Border%5D=42&metadata%5Btier%5D=gold"},
		{"nested params", stripe.Params{"card": stripe.Params{"exp_month": 12}}, "card%5Bexp_month%5D=12"},
		{"list", stripe.Params{"expand": []string{"customer", "invoice"}}, "expand%5B0%5D=customer&expand%5B1%5D=invoice"},
		{"list of maps", stripe.Params{"items": []interface{}{map[string]interface{}{"plan": "gold"}}}, "items%5B0%5D%5Bplan%5D=gold"},
		{"typed slice", stripe.Params{"amounts": []int{1, 2}}, "amounts%5B0%5D=1&amounts%5B1%5D=2"},
		{"resource as id", stripe.Params{"customer": stripe.NewCustomer("cus_1")}, "customer=cus_1"},
		{"float", stripe.Params{"rate": 1.5}, "rate=1.5"},
		{"empty string clears", stripe.Params{"description": ""}, "description="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, stripe.EncodeForm(tt.params))
		})
	}
}

func TestFormValues(t *testing.T) {
	t.Parallel()

	values := stripe.FormValues(stripe.Params{"metadata": map[string]string{"k": "v"}, "amount": int64(100)})
	assert.Equal(t, url.Values{"metadata[k]": {"v"}, "amount": {"100"}}, values)
}

func TestEncodeMultipart(t *testing.T) {
	t.Parallel()

	body, contentType, err := stripe.EncodeMultipart(stripe.Params{
		"purpose": "identity_document",
		"file": &stripe.FileParam{
			Filename:    "id.png",
			ContentType: "image/png",
			Content:     strings.NewReader("PNGDATA"),
		},
	})
	require.NoError(t, err)

	mediaType, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType)

	reader := multipart.NewReader(bytes.NewReader(body), params["boundary"])

	fields := map[string]string{}
	files := map[string]string{}

	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}

		require.NoError(t, err)

		data, err := io.ReadAll(part)
		require.NoError(t, err)

		if part.FileName() != "" {
			files[part.FileName()] = string(data)
			assert.Equal(t, "image/png", part.Header.Get("Content-Type"))

			continue
		}

		fields[part.FormName()] = string(data)
	}

	assert.Equal(t, map[string]string{"purpose": "identity_document"}, fields)
	assert.Equal(t, map[string]string{"id.png": "PNGDATA"}, files)
}
