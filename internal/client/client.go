package client

import (
	"context"
	"os"
	"strings"

	"github.com/fivetwenty-io/asyncstripe/internal/constants"
	"github.com/fivetwenty-io/asyncstripe/internal/http"
	"github.com/fivetwenty-io/asyncstripe/pkg/stripe"
)

// Client implements the stripe.Client interface.
type Client struct {
	httpClient *http.Client
	requestor  *requestor
	settings   *settings
	logger     stripe.Logger

	// Resource clients
	accounts              stripe.AccountsClient
	balance               stripe.BalanceClient
	cards                 stripe.CardsClient
	bankAccounts          stripe.BankAccountsClient
	charges               stripe.ChargesClient
	disputes              stripe.DisputesClient
	customers             stripe.CustomersClient
	subscriptions         stripe.SubscriptionsClient
	invoices              stripe.InvoicesClient
	invoiceItems          stripe.InvoiceItemsClient
	plans                 stripe.PlansClient
	coupons               stripe.CouponsClient
	refunds               stripe.RefundsClient
	tokens                stripe.TokensClient
	events                stripe.EventsClient
	transfers             stripe.TransfersClient
	reversals             stripe.ReversalsClient
	recipients            stripe.RecipientsClient
	fileUploads           stripe.FileUploadsClient
	applicationFees       stripe.ApplicationFeesClient
	applicationFeeRefunds stripe.ApplicationFeeRefundsClient
	bitcoinReceivers      stripe.BitcoinReceiversClient
	lists                 stripe.ListsClient
}

var _ stripe.Client = (*Client)(nil)

func devMode() bool {
	value := strings.ToLower(os.Getenv("STRIPE_DEV_MODE"))

	return value == constants.BooleanTrue || value == "1"
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *stripe.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(&loggerAdapter{logger: config.Logger}))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.SkipTLSVerify {
		httpOpts = append(httpOpts, http.WithInsecureSkipVerify(true))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.Interceptors != nil {
		httpOpts = append(httpOpts, http.WithInterceptors(config.Interceptors))
	}

	return httpOpts
}

// New creates a new Stripe API client. A missing API key is not an error
// here; calls fail with an AuthenticationError until one is set.
func New(_ context.Context, config *stripe.Config) (*Client, error) {
	if config == nil {
		return nil, stripe.ErrConfigRequired
	}

	if config.SkipTLSVerify && !devMode() {
		return nil, constants.ErrSkipTLSOnlyInDev
	}

	config = config.WithDefaults()

	httpClient := http.NewClient(config.APIBase, createHTTPClientOptions(config)...)

	shared := &settings{
		apiKey:     config.APIKey,
		apiBase:    strings.TrimSuffix(config.APIBase, "/"),
		uploadBase: strings.TrimSuffix(config.UploadAPIBase, "/"),
		apiVersion: config.APIVersion,
	}

	client := &Client{
		httpClient: httpClient,
		settings:   shared,
		logger:     config.Logger,
		requestor: &requestor{
			httpClient: httpClient,
			settings:   shared,
			logger:     config.Logger,
		},
	}

	// Initialize resource clients
	client.initializeResourceClients()

	return client, nil
}

func (c *Client) initializeResourceClients() {
	r := c.requestor

	c.accounts = NewAccountsClient(r)
	c.balance = NewBalanceClient(r)
	c.cards = NewCardsClient(r)
	c.bankAccounts = NewBankAccountsClient(r)
	c.charges = NewChargesClient(r)
	c.disputes = NewDisputesClient(r)
	c.customers = NewCustomersClient(r)
	c.subscriptions = NewSubscriptionsClient(r)
	c.invoices = NewInvoicesClient(r)
	c.invoiceItems = NewInvoiceItemsClient(r)
	c.plans = NewPlansClient(r)
	c.coupons = NewCouponsClient(r)
	c.refunds = NewRefundsClient(r)
	c.tokens = NewTokensClient(r)
	c.events = NewEventsClient(r)
	c.transfers = NewTransfersClient(r)
	c.reversals = NewReversalsClient(r)
	c.recipients = NewRecipientsClient(r)
	c.fileUploads = NewFileUploadsClient(r)
	c.applicationFees = NewApplicationFeesClient(r)
	c.applicationFeeRefunds = NewApplicationFeeRefundsClient(r)
	c.bitcoinReceivers = NewBitcoinReceiversClient(r)
	c.lists = NewListsClient(r)
}

// Request implements stripe.Client.Request.
func (c *Client) Request(ctx context.Context, method, path string, params stripe.Params, opts ...stripe.RequestOption) *stripe.Future[interface{}] {
	return c.requestor.perform(ctx, call{method: method, path: path, params: params, opts: opts})
}

// SetAPIKey implements stripe.SettingsClient.SetAPIKey.
func (c *Client) SetAPIKey(key string) {
	c.settings.update(func(s *settings) { s.apiKey = key })
}

// SetAPIBase implements stripe.SettingsClient.SetAPIBase.
func (c *Client) SetAPIBase(base string) {
	c.settings.update(func(s *settings) { s.apiBase = strings.TrimSuffix(base, "/") })
}

// SetUploadAPIBase implements stripe.SettingsClient.SetUploadAPIBase.
func (c *Client) SetUploadAPIBase(base string) {
	c.settings.update(func(s *settings) { s.uploadBase = strings.TrimSuffix(base, "/") })
}

// SetAPIVersion implements stripe.SettingsClient.SetAPIVersion.
func (c *Client) SetAPIVersion(version string) {
	c.settings.update(func(s *settings) { s.apiVersion = version })
}

// APIKey implements stripe.SettingsClient.APIKey.
func (c *Client) APIKey() string {
	return c.settings.snapshot().apiKey
}

// Resource client accessors

// Accounts implements stripe.Client.Accounts.
func (c *Client) Accounts() stripe.AccountsClient { return c.accounts }

// Balance implements stripe.Client.Balance.
func (c *Client) Balance() stripe.BalanceClient { return c.balance }

// Cards implements stripe.Client.Cards.
func (c *Client) Cards() stripe.CardsClient { return c.cards }

// BankAccounts implements stripe.Client.BankAccounts.
func (c *Client) BankAccounts() stripe.BankAccountsClient { return c.bankAccounts }

// Charges implements stripe.Client.Charges.
func (c *Client) Charges() stripe.ChargesClient { return c.charges }

// Disputes implements stripe.Client.Disputes.
func (c *Client) Disputes() stripe.DisputesClient { return c.disputes }

// Customers implements stripe.Client.Customers.
func (c *Client) Customers() stripe.CustomersClient { return c.customers }

// Subscriptions implements stripe.Client.Subscriptions.
func (c *Client) Subscriptions() stripe.SubscriptionsClient { return c.subscriptions }

// Invoices implements stripe.Client.Invoices.
func (c *Client) Invoices() stripe.InvoicesClient { return c.invoices }

// InvoiceItems implements stripe.Client.InvoiceItems.
func (c *Client) InvoiceItems() stripe.InvoiceItemsClient { return c.invoiceItems }

// Plans implements stripe.Client.Plans.
func (c *Client) Plans() stripe.PlansClient { return c.plans }

// Coupons implements stripe.Client.Coupons.
func (c *Client) Coupons() stripe.CouponsClient { return c.coupons }

// Refunds implements stripe.Client.Refunds.
func (c *Client) Refunds() stripe.RefundsClient { return c.refunds }

// Tokens implements stripe.Client.Tokens.
func (c *Client) Tokens() stripe.TokensClient { return c.tokens }

// Events implements stripe.Client.Events.
func (c *Client) Events() stripe.EventsClient { return c.events }

// Transfers implements stripe.Client.Transfers.
func (c *Client) Transfers() stripe.TransfersClient { return c.transfers }

// Reversals implements stripe.Client.Reversals.
func (c *Client) Reversals() stripe.ReversalsClient { return c.reversals }

// Recipients implements stripe.Client.Recipients.
func (c *Client) Recipients() stripe.RecipientsClient { return c.recipients }

// FileUploads implements stripe.Client.FileUploads.
func (c *Client) FileUploads() stripe.FileUploadsClient { return c.fileUploads }

// ApplicationFees implements stripe.Client.ApplicationFees.
func (c *Client) ApplicationFees() stripe.ApplicationFeesClient { return c.applicationFees }

// ApplicationFeeRefunds implements stripe.Client.ApplicationFeeRefunds.
func (c *Client) ApplicationFeeRefunds() stripe.ApplicationFeeRefundsClient {
	return c.applicationFeeRefunds
}

// BitcoinReceivers implements stripe.Client.BitcoinReceivers.
func (c *Client) BitcoinReceivers() stripe.BitcoinReceiversClient { return c.bitcoinReceivers }

// Lists implements stripe.Client.Lists.
func (c *Client) Lists() stripe.ListsClient { return c.lists }

// loggerAdapter adapts stripe.Logger to http.Logger.
type loggerAdapter struct {
	logger stripe.Logger
}

func (l *loggerAdapter) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug(msg, fields)
}

func (l *loggerAdapter) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, fields)
}

func (l *loggerAdapter) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, fields)
}

func (l *loggerAdapter) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, fields)
}
