package stripe

import "context"

// Creatable resources can be created from parameters.
type Creatable[T Resource] interface {
	Create(ctx context.Context, params Params, opts ...RequestOption) *Future[T]
}

// Listable resources can be listed page by page.
type Listable interface {
	List(ctx context.Context, params Params, opts ...RequestOption) *Future[*List]
}

// Retrievable resources can be fetched by id.
type Retrievable[T Resource] interface {
	Retrieve(ctx context.Context, id string, opts ...RequestOption) *Future[T]
}

// Updateable resources persist their changed fields with Save. Saving an
// object with no changes resolves immediately without a network call.
type Updateable[T Resource] interface {
	Save(ctx context.Context, obj T, opts ...RequestOption) *Future[T]
}

// Deletable resources can be deleted. The response is merged into obj.
type Deletable[T Resource] interface {
	Delete(ctx context.Context, obj T, params Params, opts ...RequestOption) *Future[T]
}

// AccountsClient manages accounts. Retrieve with an empty id returns the
// account that owns the API key.
type AccountsClient interface {
	Creatable[*Account]
	Listable
	Retrievable[*Account]
	Updateable[*Account]
	Deletable[*Account]
}

// BalanceClient reads the account balance.
type BalanceClient interface {
	Retrieve(ctx context.Context, opts ...RequestOption) *Future[*Balance]
}

// CardsClient manages cards attached to a customer, recipient or account.
type CardsClient interface {
	Updateable[*Card]
	Deletable[*Card]
}

// BankAccountsClient manages bank accounts attached to a customer or account.
type BankAccountsClient interface {
	Updateable[*BankAccount]
	Deletable[*BankAccount]
}

// ChargesClient manages charges.
type ChargesClient interface {
	Creatable[*Charge]
	Listable
	Retrievable[*Charge]
	Updateable[*Charge]

	Refund(ctx context.Context, charge *Charge, params Params, opts ...RequestOption) *Future[*Charge]
	Capture(ctx context.Context, charge *Charge, params Params, opts ...RequestOption) *Future[*Charge]
	UpdateDispute(ctx context.Context, charge *Charge, params Params, opts ...RequestOption) *Future[*Dispute]
	CloseDispute(ctx context.Context, charge *Charge, opts ...RequestOption) *Future[*Dispute]
	MarkAsFraudulent(ctx context.Context, charge *Charge, opts ...RequestOption) *Future[*Charge]
	MarkAsSafe(ctx context.Context, charge *Charge, opts ...RequestOption) *Future[*Charge]
}

// DisputesClient manages disputes.
type DisputesClient interface {
	Creatable[*Dispute]
	Listable
	Retrievable[*Dispute]
	Updateable[*Dispute]

	Close(ctx context.Context, dispute *Dispute, opts ...RequestOption) *Future[*Dispute]
}

// CustomersClient manages customers.
type CustomersClient interface {
	Creatable[*Customer]
	Listable
	Retrievable[*Customer]
	Updateable[*Customer]
	Deletable[*Customer]

	AddInvoiceItem(ctx context.Context, customer *Customer, params Params, opts ...RequestOption) *Future[*InvoiceItem]
	Invoices(ctx context.Context, customer *Customer, params Params, opts ...RequestOption) *Future[*List]
	InvoiceItems(ctx context.Context, customer *Customer, params Params, opts ...RequestOption) *Future[*List]
	Charges(ctx context.Context, customer *Customer, params Params, opts ...RequestOption) *Future[*List]
	// UpdateSubscription uses the legacy single-subscription endpoint.
	//
	// Deprecated: use the customer's subscriptions list instead.
	UpdateSubscription(ctx context.Context, customer *Customer, params Params, opts ...RequestOption) *Future[*Subscription]
	// CancelSubscription uses the legacy single-subscription endpoint.
	//
	// Deprecated: use SubscriptionsClient.Delete instead.
	CancelSubscription(ctx context.Context, customer *Customer, params Params, opts ...RequestOption) *Future[*Subscription]
	DeleteDiscount(ctx context.Context, customer *Customer, opts ...RequestOption) *Future[*Customer]
}

// SubscriptionsClient manages subscriptions reached through their customer.
type SubscriptionsClient interface {
	Updateable[*Subscription]
	Deletable[*Subscription]

	DeleteDiscount(ctx context.Context, subscription *Subscription, opts ...RequestOption) *Future[*Subscription]
}

// InvoicesClient manages invoices.
type InvoicesClient interface {
	Creatable[*Invoice]
	Listable
	Retrievable[*Invoice]
	Updateable[*Invoice]

	Pay(ctx context.Context, invoice *Invoice, opts ...RequestOption) *Future[*Invoice]
	Upcoming(ctx context.Context, params Params, opts ...RequestOption) *Future[*Invoice]
}

// InvoiceItemsClient manages invoice items.
type InvoiceItemsClient interface {
	Creatable[*InvoiceItem]
	Listable
	Retrievable[*InvoiceItem]
	Updateable[*InvoiceItem]
	Deletable[*InvoiceItem]
}

// PlansClient manages plans.
type PlansClient interface {
	Creatable[*Plan]
	Listable
	Retrievable[*Plan]
	Updateable[*Plan]
	Deletable[*Plan]
}

// CouponsClient manages coupons.
type CouponsClient interface {
	Creatable[*Coupon]
	Listable
	Retrievable[*Coupon]
	Updateable[*Coupon]
	Deletable[*Coupon]
}

// RefundsClient manages refunds.
type RefundsClient interface {
	Creatable[*Refund]
	Listable
	Retrievable[*Refund]
	Updateable[*Refund]
}

// TokensClient creates and reads tokens.
type TokensClient interface {
	Creatable[*Token]
	Retrievable[*Token]
}

// EventsClient reads events.
type EventsClient interface {
	Listable
	Retrievable[*Event]
}

// TransfersClient manages transfers.
type TransfersClient interface {
	Creatable[*Transfer]
	Listable
	Retrievable[*Transfer]
	Updateable[*Transfer]

	Cancel(ctx context.Context, transfer *Transfer, opts ...RequestOption) *Future[*Transfer]
}

// ReversalsClient updates transfer reversals.
type ReversalsClient interface {
	Updateable[*Reversal]
}

// RecipientsClient manages recipients.
type RecipientsClient interface {
	Creatable[*Recipient]
	Listable
	Retrievable[*Recipient]
	Updateable[*Recipient]
	Deletable[*Recipient]

	Transfers(ctx context.Context, recipient *Recipient, params Params, opts ...RequestOption) *Future[*List]
}

// FileUploadsClient manages uploaded files. Calls go to the upload host.
type FileUploadsClient interface {
	Creatable[*FileUpload]
	Listable
	Retrievable[*FileUpload]
}

// ApplicationFeesClient reads and refunds application fees.
type ApplicationFeesClient interface {
	Listable
	Retrievable[*ApplicationFee]

	Refund(ctx context.Context, fee *ApplicationFee, params Params, opts ...RequestOption) *Future[*ApplicationFee]
}

// ApplicationFeeRefundsClient updates application fee refunds.
type ApplicationFeeRefundsClient interface {
	Updateable[*ApplicationFeeRefund]
}

// BitcoinReceiversClient manages bitcoin receivers.
type BitcoinReceiversClient interface {
	Creatable[*BitcoinReceiver]
	Listable
	Retrievable[*BitcoinReceiver]
	Updateable[*BitcoinReceiver]
	Deletable[*BitcoinReceiver]
}

// ListsClient operates on a list embedded in another object, using the
// list's own URL.
type ListsClient interface {
	All(ctx context.Context, list *List, params Params, opts ...RequestOption) *Future[*List]
	Create(ctx context.Context, list *List, params Params, opts ...RequestOption) *Future[Resource]
	Retrieve(ctx context.Context, list *List, id string, opts ...RequestOption) *Future[Resource]
	// NextPage fetches the page after list, failing with ErrNoMoreItems when
	// list is the last one.
	NextPage(ctx context.Context, list *List, params Params, opts ...RequestOption) *Future[*List]
}

// PaymentClients provides access to payment resource clients.
type PaymentClients interface {
	Charges() ChargesClient
	Disputes() DisputesClient
	Refunds() RefundsClient
	Tokens() TokensClient
	Cards() CardsClient
	BankAccounts() BankAccountsClient
}

// BillingClients provides access to billing resource clients.
type BillingClients interface {
	Customers() CustomersClient
	Subscriptions() SubscriptionsClient
	Invoices() InvoicesClient
	InvoiceItems() InvoiceItemsClient
	Plans() PlansClient
	Coupons() CouponsClient
}

// ConnectClients provides access to account and money movement clients.
type ConnectClients interface {
	Accounts() AccountsClient
	Balance() BalanceClient
	Transfers() TransfersClient
	Reversals() ReversalsClient
	Recipients() RecipientsClient
	ApplicationFees() ApplicationFeesClient
	ApplicationFeeRefunds() ApplicationFeeRefundsClient
	BitcoinReceivers() BitcoinReceiversClient
}

// MiscClients provides access to the remaining resource clients.
type MiscClients interface {
	Events() EventsClient
	FileUploads() FileUploadsClient
	Lists() ListsClient
}

// SettingsClient changes the client's shared settings. Changes apply to calls
// issued afterwards.
type SettingsClient interface {
	SetAPIKey(key string)
	SetAPIBase(base string)
	SetUploadAPIBase(base string)
	SetAPIVersion(version string)
	APIKey() string
}

// Client is the full API surface.
type Client interface {
	PaymentClients
	BillingClients
	ConnectClients
	MiscClients
	SettingsClient

	// Request issues a raw call through the same pipeline as every resource
	// operation and materializes the response.
	Request(ctx context.Context, method, path string, params Params, opts ...RequestOption) *Future[interface{}]
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}
