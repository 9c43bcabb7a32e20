package client

import (
	"context"
	"net/http"

	"github.com/fivetwenty-io/asyncstripe/pkg/stripe"
)

// ChargesClient implements stripe.ChargesClient.
type ChargesClient struct {
	creatable[*stripe.Charge]
	listable[*stripe.Charge]
	retrievable[*stripe.Charge]
	updateable[*stripe.Charge]

	res resource[*stripe.Charge]
}

// NewChargesClient creates a new charges client.
func NewChargesClient(r *requestor) *ChargesClient {
	res := newResource(r, stripe.KindCharge, stripe.NewCharge)

	return &ChargesClient{
		creatable:   creatable[*stripe.Charge]{res},
		listable:    listable[*stripe.Charge]{res},
		retrievable: retrievable[*stripe.Charge]{res},
		updateable:  updateable[*stripe.Charge]{res},
		res:         res,
	}
}

// Refund implements stripe.ChargesClient.Refund.
func (c *ChargesClient) Refund(ctx context.Context, charge *stripe.Charge, params stripe.Params, opts ...stripe.RequestOption) *stripe.Future[*stripe.Charge] {
	return c.res.instanceCall(ctx, charge, http.MethodPost, "refund", params, opts, false)
}

// Capture implements stripe.ChargesClient.Capture.
func (c *ChargesClient) Capture(ctx context.Context, charge *stripe.Charge, params stripe.Params, opts ...stripe.RequestOption) *stripe.Future[*stripe.Charge] {
	return c.res.instanceCall(ctx, charge, http.MethodPost, "capture", params, opts, false)
}

// UpdateDispute implements stripe.ChargesClient.UpdateDispute.
func (c *ChargesClient) UpdateDispute(ctx context.Context, charge *stripe.Charge, params stripe.Params, opts ...stripe.RequestOption) *stripe.Future[*stripe.Dispute] {
	return c.disputeCall(ctx, charge, "dispute", params, opts)
}

// CloseDispute implements stripe.ChargesClient.CloseDispute.
func (c *ChargesClient) CloseDispute(ctx context.Context, charge *stripe.Charge, opts ...stripe.RequestOption) *stripe.Future[*stripe.Dispute] {
	return c.disputeCall(ctx, charge, "dispute/close", nil, opts)
}

// MarkAsFraudulent implements stripe.ChargesClient.MarkAsFraudulent.
func (c *ChargesClient) MarkAsFraudulent(ctx context.Context, charge *stripe.Charge, opts ...stripe.RequestOption) *stripe.Future[*stripe.Charge] {
	return c.report(ctx, charge, "fraudulent", opts)
}

// MarkAsSafe implements stripe.ChargesClient.MarkAsSafe.
func (c *ChargesClient) MarkAsSafe(ctx context.Context, charge *stripe.Charge, opts ...stripe.RequestOption) *stripe.Future[*stripe.Charge] {
	return c.report(ctx, charge, "safe", opts)
}

func (c *ChargesClient) report(ctx context.Context, charge *stripe.Charge, verdict string, opts []stripe.RequestOption) *stripe.Future[*stripe.Charge] {
	params := stripe.Params{"fraud_details": stripe.Params{"user_report": verdict}}

	return c.res.instanceCall(ctx, charge, http.MethodPost, "", params, opts, false)
}

// disputeCall posts to a dispute endpoint of charge. The response is the
// dispute itself and replaces the charge's "dispute" field.
func (c *ChargesClient) disputeCall(ctx context.Context, charge *stripe.Charge, action string, params stripe.Params, opts []stripe.RequestOption) *stripe.Future[*stripe.Dispute] {
	req, err := c.res.actionCall(charge, http.MethodPost, action, params, opts)
	if err != nil {
		return stripe.Rejected[*stripe.Dispute](err)
	}

	return request(ctx, c.res.r, req, func(raw interface{}, rc *requestContext) (*stripe.Dispute, error) {
		return mergeField(charge, "dispute", raw, rc, func() *stripe.Dispute { return stripe.NewDispute("") })
	})
}

// DisputesClient implements stripe.DisputesClient.
type DisputesClient struct {
	creatable[*stripe.Dispute]
	listable[*stripe.Dispute]
	retrievable[*stripe.Dispute]
	updateable[*stripe.Dispute]

	res resource[*stripe.Dispute]
}

// NewDisputesClient creates a new disputes client.
func NewDisputesClient(r *requestor) *DisputesClient {
	res := newResource(r, stripe.KindDispute, stripe.NewDispute)

	return &DisputesClient{
		creatable:   creatable[*stripe.Dispute]{res},
		listable:    listable[*stripe.Dispute]{res},
		retrievable: retrievable[*stripe.Dispute]{res},
		updateable:  updateable[*stripe.Dispute]{res},
		res:         res,
	}
}

// Close implements stripe.DisputesClient.Close.
func (c *DisputesClient) Close(ctx context.Context, dispute *stripe.Dispute, opts ...stripe.RequestOption) *stripe.Future[*stripe.Dispute] {
	return c.res.instanceCall(ctx, dispute, http.MethodPost, "close", nil, opts, false)
}

// RefundsClient implements stripe.RefundsClient.
type RefundsClient struct {
	creatable[*stripe.Refund]
	listable[*stripe.Refund]
	retrievable[*stripe.Refund]
	updateable[*stripe.Refund]
}

// NewRefundsClient creates a new refunds client.
func NewRefundsClient(r *requestor) *RefundsClient {
	res := newResource(r, stripe.KindRefund, stripe.NewRefund)

	return &RefundsClient{
		creatable:   creatable[*stripe.Refund]{res},
		listable:    listable[*stripe.Refund]{res},
		retrievable: retrievable[*stripe.Refund]{res},
		updateable:  updateable[*stripe.Refund]{res},
	}
}

// TokensClient implements stripe.TokensClient.
type TokensClient struct {
	creatable[*stripe.Token]
	retrievable[*stripe.Token]
}

// NewTokensClient creates a new tokens client.
func NewTokensClient(r *requestor) *TokensClient {
	res := newResource(r, stripe.KindToken, stripe.NewToken)

	return &TokensClient{
		creatable:   creatable[*stripe.Token]{res},
		retrievable: retrievable[*stripe.Token]{res},
	}
}
