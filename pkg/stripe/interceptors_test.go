package stripe_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/fivetwenty-io/asyncstripe/pkg/stripe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	entries []string
	fields  []map[string]interface{}
}

func (l *recordingLogger) log(level, msg string, fields map[string]interface{}) {
	l.entries = append(l.entries, level+":"+msg)
	l.fields = append(l.fields, fields)
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) { l.log("debug", msg, fields) }
func (l *recordingLogger) Info(msg string, fields map[string]interface{})  { l.log("info", msg, fields) }
func (l *recordingLogger) Warn(msg string, fields map[string]interface{})  { l.log("warn", msg, fields) }
func (l *recordingLogger) Error(msg string, fields map[string]interface{}) { l.log("error", msg, fields) }

func TestInterceptorChain_RequestInterceptors(t *testing.T) {
	t.Parallel()

	chain := stripe.NewInterceptorChain()
	ctx := context.Background()

	var executionOrder []string

	chain.AddRequestInterceptor(func(ctx context.Context, req *stripe.Request) error {
		executionOrder = append(executionOrder, "first")

		return nil
	})

	chain.AddRequestInterceptor(func(ctx context.Context, req *stripe.Request) error {
		executionOrder = append(executionOrder, "second")

		return nil
	})

	err := chain.ExecuteRequestInterceptors(ctx, &stripe.Request{Method: "GET", Path: "/v1/charges"})
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, executionOrder)
}

func TestInterceptorChain_StopsOnError(t *testing.T) {
	t.Parallel()

	chain := stripe.NewInterceptorChain()
	errStop := errors.New("stop")
	called := false

	chain.AddRequestInterceptor(func(ctx context.Context, req *stripe.Request) error { return errStop })
	chain.AddRequestInterceptor(func(ctx context.Context, req *stripe.Request) error {
		called = true

		return nil
	})

	err := chain.ExecuteRequestInterceptors(context.Background(), &stripe.Request{})
	require.ErrorIs(t, err, errStop)
	assert.False(t, called)
}

func TestInterceptorChain_ResponseInterceptors(t *testing.T) {
	t.Parallel()

	chain := stripe.NewInterceptorChain()

	var executionOrder []string

	chain.AddResponseInterceptor(func(ctx context.Context, req *stripe.Request, resp *stripe.Response) error {
		executionOrder = append(executionOrder, "first")

		return nil
	})

	chain.AddResponseInterceptor(func(ctx context.Context, req *stripe.Request, resp *stripe.Response) error {
		executionOrder = append(executionOrder, "second")

		return nil
	})

	err := chain.ExecuteResponseInterceptors(context.Background(),
		&stripe.Request{Method: "GET", Path: "/v1/charges"},
		&stripe.Response{StatusCode: 200})
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, executionOrder)
}

func TestHeaderInterceptor(t *testing.T) {
	t.Parallel()

	interceptor := stripe.HeaderInterceptor(map[string]string{
		"X-Custom-Header": "custom-value",
		"X-Trace":         "123456",
	})

	req := &stripe.Request{Method: "GET", Path: "/v1/balance"}

	require.NoError(t, interceptor(context.Background(), req))

	assert.Equal(t, "custom-value", req.Headers.Get("X-Custom-Header"))
	assert.Equal(t, "123456", req.Headers.Get("X-Trace"))
}

func TestLoggingInterceptors(t *testing.T) {
	t.Parallel()

	logger := &recordingLogger{}
	req := &stripe.Request{Method: "POST", Path: "/v1/charges"}

	require.NoError(t, stripe.LoggingInterceptor(logger)(context.Background(), req))

	header := http.Header{}
	header.Set("Request-Id", "req_9")

	require.NoError(t, stripe.LoggingResponseInterceptor(logger)(context.Background(), req,
		&stripe.Response{StatusCode: 402, Headers: header, Error: errors.New("declined")}))

	assert.Equal(t, []string{"debug:API Request", "error:API Response Error"}, logger.entries)
	assert.Equal(t, "req_9", logger.fields[1]["request_id"])
	assert.Equal(t, 402, logger.fields[1]["status_code"])
}

func TestMetricsCollector(t *testing.T) {
	t.Parallel()

	collector := stripe.NewMetricsCollector()

	var (
		notifiedEndpoint string
		notifiedMetrics  stripe.Metrics
	)

	collector.SetOnChange(func(endpoint string, metrics stripe.Metrics) {
		notifiedEndpoint = endpoint
		notifiedMetrics = metrics
	})

	requestInterceptor := stripe.MetricsRequestInterceptor(collector)
	responseInterceptor := stripe.MetricsResponseInterceptor(collector)

	ctx := context.Background()

	for _, status := range []int{200, 500} {
		req := &stripe.Request{Method: "GET", Path: "/v1/charges"}
		require.NoError(t, requestInterceptor(ctx, req))
		require.NoError(t, responseInterceptor(ctx, req, &stripe.Response{StatusCode: status}))
	}

	metrics := collector.GetMetrics("GET /v1/charges")
	require.NotNil(t, metrics)
	assert.Equal(t, int64(2), metrics.TotalRequests)
	assert.Equal(t, int64(1), metrics.TotalErrors)
	assert.False(t, metrics.LastRequestTime.IsZero())

	assert.Equal(t, "GET /v1/charges", notifiedEndpoint)
	assert.Equal(t, int64(2), notifiedMetrics.TotalRequests)

	assert.Nil(t, collector.GetMetrics("GET /v1/unknown"))
}
