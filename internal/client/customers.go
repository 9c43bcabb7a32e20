package client

import (
	"context"
	"net/http"

	"github.com/fivetwenty-io/asyncstripe/pkg/stripe"
)

// CustomersClient implements stripe.CustomersClient.
type CustomersClient struct {
	creatable[*stripe.Customer]
	listable[*stripe.Customer]
	retrievable[*stripe.Customer]
	updateable[*stripe.Customer]
	deletable[*stripe.Customer]

	res          resource[*stripe.Customer]
	invoices     resource[*stripe.Invoice]
	invoiceItems resource[*stripe.InvoiceItem]
	charges      resource[*stripe.Charge]
}

// NewCustomersClient creates a new customers client.
func NewCustomersClient(r *requestor) *CustomersClient {
	res := newResource(r, stripe.KindCustomer, stripe.NewCustomer)

	return &CustomersClient{
		creatable:    creatable[*stripe.Customer]{res},
		listable:     listable[*stripe.Customer]{res},
		retrievable:  retrievable[*stripe.Customer]{res},
		updateable:   updateable[*stripe.Customer]{res},
		deletable:    deletable[*stripe.Customer]{res},
		res:          res,
		invoices:     newResource(r, stripe.KindInvoice, stripe.NewInvoice),
		invoiceItems: newResource(r, stripe.KindInvoiceItem, stripe.NewInvoiceItem),
		charges:      newResource(r, stripe.KindCharge, stripe.NewCharge),
	}
}

// ownerOptions makes calls issued on behalf of obj default to its credential
// and account. Options passed by the caller still win.
func ownerOptions(obj stripe.Resource, opts []stripe.RequestOption) []stripe.RequestOption {
	base := obj.Base()

	out := make([]stripe.RequestOption, 0, len(opts)+2)
	if key := base.APIKey(); key != "" {
		out = append(out, stripe.WithAPIKey(key))
	}

	if account := base.StripeAccount(); account != "" {
		out = append(out, stripe.WithStripeAccount(account))
	}

	return append(out, opts...)
}

// AddInvoiceItem implements stripe.CustomersClient.AddInvoiceItem.
func (c *CustomersClient) AddInvoiceItem(ctx context.Context, customer *stripe.Customer, params stripe.Params, opts ...stripe.RequestOption) *stripe.Future[*stripe.InvoiceItem] {
	if _, err := customer.InstancePath(); err != nil {
		return stripe.Rejected[*stripe.InvoiceItem](err)
	}

	return c.invoiceItems.create(ctx, withParam(params, "customer", customer.ID()), ownerOptions(customer, opts))
}

// Invoices implements stripe.CustomersClient.Invoices.
func (c *CustomersClient) Invoices(ctx context.Context, customer *stripe.Customer, params stripe.Params, opts ...stripe.RequestOption) *stripe.Future[*stripe.List] {
	return c.listFor(ctx, customer, c.invoices.classPath(), params, opts)
}

// InvoiceItems implements stripe.CustomersClient.InvoiceItems.
func (c *CustomersClient) InvoiceItems(ctx context.Context, customer *stripe.Customer, params stripe.Params, opts ...stripe.RequestOption) *stripe.Future[*stripe.List] {
	return c.listFor(ctx, customer, c.invoiceItems.classPath(), params, opts)
}

// Charges implements stripe.CustomersClient.Charges.
func (c *CustomersClient) Charges(ctx context.Context, customer *stripe.Customer, params stripe.Params, opts ...stripe.RequestOption) *stripe.Future[*stripe.List] {
	return c.listFor(ctx, customer, c.charges.classPath(), params, opts)
}

func (c *CustomersClient) listFor(ctx context.Context, customer *stripe.Customer, path string, params stripe.Params, opts []stripe.RequestOption) *stripe.Future[*stripe.List] {
	if _, err := customer.InstancePath(); err != nil {
		return stripe.Rejected[*stripe.List](err)
	}

	return fetchList(ctx, c.res.r, call{
		method: http.MethodGet,
		path:   path,
		params: withParam(params, "customer", customer.ID()),
		owner:  customer.Base(),
		opts:   opts,
	})
}

// UpdateSubscription implements stripe.CustomersClient.UpdateSubscription.
func (c *CustomersClient) UpdateSubscription(ctx context.Context, customer *stripe.Customer, params stripe.Params, opts ...stripe.RequestOption) *stripe.Future[*stripe.Subscription] {
	return c.subscriptionCall(ctx, customer, http.MethodPost, params, opts)
}

// CancelSubscription implements stripe.CustomersClient.CancelSubscription.
func (c *CustomersClient) CancelSubscription(ctx context.Context, customer *stripe.Customer, params stripe.Params, opts ...stripe.RequestOption) *stripe.Future[*stripe.Subscription] {
	return c.subscriptionCall(ctx, customer, http.MethodDelete, params, opts)
}

func (c *CustomersClient) subscriptionCall(ctx context.Context, customer *stripe.Customer, method string, params stripe.Params, opts []stripe.RequestOption) *stripe.Future[*stripe.Subscription] {
	c.res.r.warn("The single subscription endpoint is deprecated; use the customer's subscriptions list", map[string]interface{}{
		"customer": customer.ID(),
		"method":   method,
	})

	req, err := c.res.actionCall(customer, method, "subscription", params, opts)
	if err != nil {
		return stripe.Rejected[*stripe.Subscription](err)
	}

	return request(ctx, c.res.r, req, func(raw interface{}, rc *requestContext) (*stripe.Subscription, error) {
		return mergeField(customer, "subscription", raw, rc, func() *stripe.Subscription { return stripe.NewSubscription("") })
	})
}

// DeleteDiscount implements stripe.CustomersClient.DeleteDiscount.
func (c *CustomersClient) DeleteDiscount(ctx context.Context, customer *stripe.Customer, opts ...stripe.RequestOption) *stripe.Future[*stripe.Customer] {
	return deleteDiscount(ctx, c.res, customer, opts)
}

// deleteDiscount removes the discount of obj and clears its "discount" field.
func deleteDiscount[T stripe.Resource](ctx context.Context, res resource[T], obj T, opts []stripe.RequestOption) *stripe.Future[T] {
	req, err := res.actionCall(obj, http.MethodDelete, "discount", nil, opts)
	if err != nil {
		return stripe.Rejected[T](err)
	}

	return request(ctx, res.r, req, func(_ interface{}, rc *requestContext) (T, error) {
		return mergeInto(obj, map[string]interface{}{"discount": nil}, rc, true)
	})
}

// SubscriptionsClient implements stripe.SubscriptionsClient.
type SubscriptionsClient struct {
	updateable[*stripe.Subscription]
	deletable[*stripe.Subscription]

	res resource[*stripe.Subscription]
}

// NewSubscriptionsClient creates a new subscriptions client.
func NewSubscriptionsClient(r *requestor) *SubscriptionsClient {
	res := newResource(r, stripe.KindSubscription, stripe.NewSubscription)

	return &SubscriptionsClient{
		updateable: updateable[*stripe.Subscription]{res},
		deletable:  deletable[*stripe.Subscription]{res},
		res:        res,
	}
}

// DeleteDiscount implements stripe.SubscriptionsClient.DeleteDiscount.
func (c *SubscriptionsClient) DeleteDiscount(ctx context.Context, subscription *stripe.Subscription, opts ...stripe.RequestOption) *stripe.Future[*stripe.Subscription] {
	return deleteDiscount(ctx, c.res, subscription, opts)
}
