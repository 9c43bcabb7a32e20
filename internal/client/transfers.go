package client

import (
	"context"
	"net/http"

	"github.com/fivetwenty-io/asyncstripe/pkg/stripe"
)

// TransfersClient implements stripe.TransfersClient.
type TransfersClient struct {
	creatable[*stripe.Transfer]
	listable[*stripe.Transfer]
	retrievable[*stripe.Transfer]
	updateable[*stripe.Transfer]

	res resource[*stripe.Transfer]
}

// NewTransfersClient creates a new transfers client.
func NewTransfersClient(r *requestor) *TransfersClient {
	res := newResource(r, stripe.KindTransfer, stripe.NewTransfer)

	return &TransfersClient{
		creatable:   creatable[*stripe.Transfer]{res},
		listable:    listable[*stripe.Transfer]{res},
		retrievable: retrievable[*stripe.Transfer]{res},
		updateable:  updateable[*stripe.Transfer]{res},
		res:         res,
	}
}

// Cancel implements stripe.TransfersClient.Cancel.
func (c *TransfersClient) Cancel(ctx context.Context, transfer *stripe.Transfer, opts ...stripe.RequestOption) *stripe.Future[*stripe.Transfer] {
	return c.res.instanceCall(ctx, transfer, http.MethodPost, "cancel", nil, opts, false)
}

// ReversalsClient implements stripe.ReversalsClient.
type ReversalsClient struct {
	updateable[*stripe.Reversal]
}

// NewReversalsClient creates a new reversals client.
func NewReversalsClient(r *requestor) *ReversalsClient {
	return &ReversalsClient{
		updateable: updateable[*stripe.Reversal]{newResource(r, stripe.KindReversal, stripe.NewReversal)},
	}
}

// RecipientsClient implements stripe.RecipientsClient.
type RecipientsClient struct {
	creatable[*stripe.Recipient]
	listable[*stripe.Recipient]
	retrievable[*stripe.Recipient]
	updateable[*stripe.Recipient]
	deletable[*stripe.Recipient]

	res       resource[*stripe.Recipient]
	transfers resource[*stripe.Transfer]
}

// NewRecipientsClient creates a new recipients client.
func NewRecipientsClient(r *requestor) *RecipientsClient {
	res := newResource(r, stripe.KindRecipient, stripe.NewRecipient)

	return &RecipientsClient{
		creatable:   creatable[*stripe.Recipient]{res},
		listable:    listable[*stripe.Recipient]{res},
		retrievable: retrievable[*stripe.Recipient]{res},
		updateable:  updateable[*stripe.Recipient]{res},
		deletable:   deletable[*stripe.Recipient]{res},
		res:         res,
		transfers:   newResource(r, stripe.KindTransfer, stripe.NewTransfer),
	}
}

// Transfers implements stripe.RecipientsClient.Transfers.
func (c *RecipientsClient) Transfers(ctx context.Context, recipient *stripe.Recipient, params stripe.Params, opts ...stripe.RequestOption) *stripe.Future[*stripe.List] {
	if _, err := recipient.InstancePath(); err != nil {
		return stripe.Rejected[*stripe.List](err)
	}

	return c.transfers.list(ctx, "", withParam(params, "recipient", recipient.ID()), ownerOptions(recipient, opts))
}
