package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/fivetwenty-io/asyncstripe/internal/constants"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/fivetwenty-io/asyncstripe/internal/http"

// withTracing returns a copy of client whose transport records a client span
// per round trip.
func withTracing(client *http.Client) *http.Client {
	if client == nil {
		client = http.DefaultClient
	}

	clone := *client

	base := clone.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	if _, ok := base.(*tracingTransport); ok {
		return &clone
	}

	clone.Transport = &tracingTransport{base: base, tracer: otel.Tracer(tracerName)}

	return &clone
}

type tracingTransport struct {
	base   http.RoundTripper
	tracer trace.Tracer
}

func (t *tracingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	method := strings.ToUpper(req.Method)

	ctx, span := t.tracer.Start(req.Context(), "stripe "+method+" "+req.URL.Path,
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.host", req.URL.Host),
		attribute.String("http.route", req.URL.Path),
	)

	if account := req.Header.Get("Stripe-Account"); account != "" {
		span.SetAttributes(attribute.String("stripe.account", account))
	}

	start := time.Now()

	resp, err := t.base.RoundTrip(req.WithContext(ctx))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")

		return resp, err
	}

	span.SetAttributes(
		attribute.Int("http.status_code", resp.StatusCode),
		attribute.Int64("http.client_duration_ms", time.Since(start).Milliseconds()),
	)

	if id := resp.Header.Get(constants.HeaderRequestID); id != "" {
		span.SetAttributes(attribute.String("stripe.request_id", id))
	}

	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
	}

	return resp, nil
}
