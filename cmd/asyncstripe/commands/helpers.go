package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/asyncstripe/internal/constants"
	"github.com/fivetwenty-io/asyncstripe/internal/logging"
	"github.com/fivetwenty-io/asyncstripe/pkg/stripe"
	"github.com/fivetwenty-io/asyncstripe/pkg/stripeclient"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

const autoIdempotencyKey = "auto"

// column describes one field shown when a list is rendered as a table.
type column struct {
	header string
	value  func(obj *stripe.Object) string
}

func field(name string) column {
	return column{
		header: headerFor(name),
		value:  func(obj *stripe.Object) string { return display(obj.Get(name)) },
	}
}

func timestampField(name string) column {
	return column{
		header: headerFor(name),
		value:  func(obj *stripe.Object) string { return formatTimestamp(obj.GetInt64(name)) },
	}
}

func amountField(name string) column {
	return column{
		header: headerFor(name),
		value: func(obj *stripe.Object) string {
			return formatAmount(obj.GetInt64(name), obj.GetString("currency"))
		},
	}
}

func headerFor(name string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}

// createClient builds a client from the merged flag, environment and config
// file settings.
func createClient(ctx context.Context) (stripe.Client, error) {
	apiKey := viper.GetString("api_key")
	if apiKey == "" {
		return nil, constants.ErrNoAPIKeyConfigured
	}

	return createClientWithKey(ctx, apiKey)
}

func createClientWithKey(ctx context.Context, apiKey string) (stripe.Client, error) {
	verbose := viper.GetBool("verbose")

	logger, err := logging.NewConsole(verbose)
	if err != nil {
		return nil, err
	}

	config := stripe.DefaultConfig()
	config.APIKey = apiKey
	config.SkipTLSVerify = viper.GetBool("skip_tls_verify")
	config.APIVersion = viper.GetString("api_version")
	config.Logger = logger
	config.Interceptors = verboseInterceptors(logger, verbose)

	if base := viper.GetString("api_base"); base != "" {
		config.APIBase = base
		config.UploadAPIBase = base
	}

	if base := viper.GetString("upload_api_base"); base != "" {
		config.UploadAPIBase = base
	}

	return stripeclient.New(ctx, config)
}

// verboseInterceptors logs every call and its response when verbose is set.
func verboseInterceptors(logger stripe.Logger, verbose bool) *stripe.InterceptorChain {
	if !verbose {
		return nil
	}

	chain := stripe.NewInterceptorChain()
	chain.AddRequestInterceptor(stripe.LoggingInterceptor(logger))
	chain.AddResponseInterceptor(stripe.LoggingResponseInterceptor(logger))

	return chain
}

// parseParams turns KEY=VALUE pairs into request parameters. Bracketed keys
// such as metadata[order] are sent as written.
func parseParams(pairs []string) (stripe.Params, error) {
	params := stripe.Params{}

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidParamFormat, pair)
		}

		params[key] = value
	}

	return params, nil
}

func outputFormat() (string, error) {
	format := viper.GetString("output")
	if format == "" {
		return constants.FormatTable, nil
	}

	switch format {
	case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("%w: %q", constants.ErrInvalidOutputFormat, format)
	}
}

func encodeStructured(w io.Writer, format string, data interface{}) error {
	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

		return encoder.Encode(data)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()

		return encoder.Encode(data)
	default:
		return fmt.Errorf("%w: %q", constants.ErrInvalidOutputFormat, format)
	}
}

// renderResource prints one object. In table form fields lists the rows to
// show; with no fields every top-level key is shown.
func renderResource(w io.Writer, resource stripe.Resource, fields ...string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	obj := resource.Base()
	if format != constants.FormatTable {
		return encodeStructured(w, format, obj.ToMap())
	}

	if len(fields) == 0 {
		fields = obj.Keys()
		sort.Strings(fields)
	}

	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")

	for _, name := range fields {
		if !obj.Has(name) {
			continue
		}

		_ = table.Append(name, display(obj.Get(name)))
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// renderList prints a page of a list followed by a hint when more pages
// exist.
func renderList(w io.Writer, list *stripe.List, empty string, columns ...column) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	if format != constants.FormatTable {
		return encodeStructured(w, format, list.ToMap())
	}

	if list.Len() == 0 {
		_, err := fmt.Fprintln(w, empty)

		return err
	}

	headers := make([]interface{}, len(columns))
	for i, col := range columns {
		headers[i] = col.header
	}

	table := tablewriter.NewWriter(w)
	table.Header(headers...)

	for _, item := range list.Data() {
		row := make([]interface{}, len(columns))
		for i, col := range columns {
			row[i] = col.value(item.Base())
		}

		_ = table.Append(row...)
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	if list.HasMore() {
		_, err := fmt.Fprintf(w, "More results available, use --starting-after %s\n", list.LastID())

		return err
	}

	return nil
}

// display formats a field value for a table cell. Nested objects collapse to
// their id.
func display(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return constants.NotAvailable
	case *stripe.List:
		return fmt.Sprintf("%d item(s)", v.Len())
	case stripe.Resource:
		if id := v.Base().ID(); id != "" {
			return id
		}

		data, err := json.Marshal(v.Base().ToMap())
		if err != nil {
			return v.Base().String()
		}

		return string(data)
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}

		return string(data)
	}
}

func formatTimestamp(unix int64) string {
	if unix == 0 {
		return constants.NotAvailable
	}

	return time.Unix(unix, 0).UTC().Format("2006-01-02 15:04:05")
}

// formatAmount renders an amount in the currency's smallest unit as a
// decimal with two places.
func formatAmount(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	return fmt.Sprintf("%s%d.%02d %s", sign, amount/100, amount%100, strings.ToUpper(currency))
}

// listParams builds the pagination parameters shared by every list command.
func listParams(limit int, startingAfter string, extra []string) (stripe.Params, error) {
	if limit > constants.MaxPageSize {
		return nil, fmt.Errorf("%w: got %d", constants.ErrInvalidLimit, limit)
	}

	params, err := parseParams(extra)
	if err != nil {
		return nil, err
	}

	if limit > 0 {
		params["limit"] = limit
	}

	if startingAfter != "" {
		params["starting_after"] = startingAfter
	}

	return params, nil
}

// requestOptions turns the shared request flags into call options. An
// idempotency key of "auto" is replaced by a random one.
func requestOptions(idempotencyKey, account string) []stripe.RequestOption {
	var opts []stripe.RequestOption

	if idempotencyKey == autoIdempotencyKey {
		idempotencyKey = stripe.NewIdempotencyKey()
	}

	if idempotencyKey != "" {
		opts = append(opts, stripe.WithIdempotencyKey(idempotencyKey))
	}

	if account != "" {
		opts = append(opts, stripe.WithStripeAccount(account))
	}

	return opts
}

// maskSecret keeps the first few characters of a secret visible.
func maskSecret(secret string) string {
	if secret == "" {
		return ""
	}

	if len(secret) <= constants.SecretVisiblePrefix {
		return constants.Masked
	}

	return secret[:constants.SecretVisiblePrefix] + constants.Masked
}
