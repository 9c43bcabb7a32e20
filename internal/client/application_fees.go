package client

import (
	"context"
	"net/http"

	"github.com/fivetwenty-io/asyncstripe/pkg/stripe"
)

// ApplicationFeesClient implements stripe.ApplicationFeesClient.
type ApplicationFeesClient struct {
	listable[*stripe.ApplicationFee]
	retrievable[*stripe.ApplicationFee]

	res resource[*stripe.ApplicationFee]
}

// NewApplicationFeesClient creates a new application fees client.
func NewApplicationFeesClient(r *requestor) *ApplicationFeesClient {
	res := newResource(r, stripe.KindApplicationFee, stripe.NewApplicationFee)

	return &ApplicationFeesClient{
		listable:    listable[*stripe.ApplicationFee]{res},
		retrievable: retrievable[*stripe.ApplicationFee]{res},
		res:         res,
	}
}

// Refund implements stripe.ApplicationFeesClient.Refund.
func (c *ApplicationFeesClient) Refund(ctx context.Context, fee *stripe.ApplicationFee, params stripe.Params, opts ...stripe.RequestOption) *stripe.Future[*stripe.ApplicationFee] {
	return c.res.instanceCall(ctx, fee, http.MethodPost, "refund", params, opts, false)
}

// ApplicationFeeRefundsClient implements stripe.ApplicationFeeRefundsClient.
type ApplicationFeeRefundsClient struct {
	updateable[*stripe.ApplicationFeeRefund]
}

// NewApplicationFeeRefundsClient creates a new application fee refunds client.
func NewApplicationFeeRefundsClient(r *requestor) *ApplicationFeeRefundsClient {
	res := newResource(r, stripe.KindApplicationFeeRefund, stripe.NewApplicationFeeRefund)

	return &ApplicationFeeRefundsClient{updateable: updateable[*stripe.ApplicationFeeRefund]{res}}
}

// BitcoinReceiversClient implements stripe.BitcoinReceiversClient.
type BitcoinReceiversClient struct {
	creatable[*stripe.BitcoinReceiver]
	listable[*stripe.BitcoinReceiver]
	retrievable[*stripe.BitcoinReceiver]
	updateable[*stripe.BitcoinReceiver]
	deletable[*stripe.BitcoinReceiver]
}

// NewBitcoinReceiversClient creates a new bitcoin receivers client.
func NewBitcoinReceiversClient(r *requestor) *BitcoinReceiversClient {
	res := newResource(r, stripe.KindBitcoinReceiver, stripe.NewBitcoinReceiver)

	return &BitcoinReceiversClient{
		creatable:   creatable[*stripe.BitcoinReceiver]{res},
		listable:    listable[*stripe.BitcoinReceiver]{res},
		retrievable: retrievable[*stripe.BitcoinReceiver]{res},
		updateable:  updateable[*stripe.BitcoinReceiver]{res},
		deletable:   deletable[*stripe.BitcoinReceiver]{res},
	}
}
