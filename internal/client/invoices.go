package client

import (
	"context"
	"net/http"

	"github.com/fivetwenty-io/asyncstripe/pkg/stripe"
)

// InvoicesClient implements stripe.InvoicesClient.
type InvoicesClient struct {
	creatable[*stripe.Invoice]
	listable[*stripe.Invoice]
	retrievable[*stripe.Invoice]
	updateable[*stripe.Invoice]

	res resource[*stripe.Invoice]
}

// NewInvoicesClient creates a new invoices client.
func NewInvoicesClient(r *requestor) *InvoicesClient {
	res := newResource(r, stripe.KindInvoice, stripe.NewInvoice)

	return &InvoicesClient{
		creatable:   creatable[*stripe.Invoice]{res},
		listable:    listable[*stripe.Invoice]{res},
		retrievable: retrievable[*stripe.Invoice]{res},
		updateable:  updateable[*stripe.Invoice]{res},
		res:         res,
	}
}

// Pay implements stripe.InvoicesClient.Pay. The paid invoice is merged into
// invoice.
func (c *InvoicesClient) Pay(ctx context.Context, invoice *stripe.Invoice, opts ...stripe.RequestOption) *stripe.Future[*stripe.Invoice] {
	return c.res.instanceCall(ctx, invoice, http.MethodPost, "pay", nil, opts, false)
}

// Upcoming implements stripe.InvoicesClient.Upcoming.
func (c *InvoicesClient) Upcoming(ctx context.Context, params stripe.Params, opts ...stripe.RequestOption) *stripe.Future[*stripe.Invoice] {
	req := call{
		method: http.MethodGet,
		path:   c.res.classPath() + "/upcoming",
		params: params,
		opts:   opts,
	}

	return request(ctx, c.res.r, req, func(raw interface{}, rc *requestContext) (*stripe.Invoice, error) {
		return stripe.MaterializeAs(raw, rc.apiKey, rc.account, c.res.empty)
	})
}

// InvoiceItemsClient implements stripe.InvoiceItemsClient.
type InvoiceItemsClient struct {
	creatable[*stripe.InvoiceItem]
	listable[*stripe.InvoiceItem]
	retrievable[*stripe.InvoiceItem]
	updateable[*stripe.InvoiceItem]
	deletable[*stripe.InvoiceItem]
}

// NewInvoiceItemsClient creates a new invoice items client.
func NewInvoiceItemsClient(r *requestor) *InvoiceItemsClient {
	res := newResource(r, stripe.KindInvoiceItem, stripe.NewInvoiceItem)

	return &InvoiceItemsClient{
		creatable:   creatable[*stripe.InvoiceItem]{res},
		listable:    listable[*stripe.InvoiceItem]{res},
		retrievable: retrievable[*stripe.InvoiceItem]{res},
		updateable:  updateable[*stripe.InvoiceItem]{res},
		deletable:   deletable[*stripe.InvoiceItem]{res},
	}
}
