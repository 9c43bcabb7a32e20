package client

import (
	"context"
	"net/http"

	"github.com/fivetwenty-io/asyncstripe/pkg/stripe"
)

// AccountsClient implements stripe.AccountsClient.
type AccountsClient struct {
	creatable[*stripe.Account]
	listable[*stripe.Account]
	retrievable[*stripe.Account]
	updateable[*stripe.Account]
	deletable[*stripe.Account]
}

// NewAccountsClient creates a new accounts client.
func NewAccountsClient(r *requestor) *AccountsClient {
	res := newResource(r, stripe.KindAccount, stripe.NewAccount)

	return &AccountsClient{
		creatable:   creatable[*stripe.Account]{res},
		listable:    listable[*stripe.Account]{res},
		retrievable: retrievable[*stripe.Account]{res},
		updateable:  updateable[*stripe.Account]{res},
		deletable:   deletable[*stripe.Account]{res},
	}
}

// BalanceClient implements stripe.BalanceClient.
type BalanceClient struct {
	r *requestor
}

// NewBalanceClient creates a new balance client.
func NewBalanceClient(r *requestor) *BalanceClient {
	return &BalanceClient{r: r}
}

// Retrieve implements stripe.BalanceClient.Retrieve.
func (c *BalanceClient) Retrieve(ctx context.Context, opts ...stripe.RequestOption) *stripe.Future[*stripe.Balance] {
	balance := stripe.NewBalance()
	path, _ := balance.InstancePath()

	return request(ctx, c.r, call{method: http.MethodGet, path: path, opts: opts},
		func(raw interface{}, rc *requestContext) (*stripe.Balance, error) {
			return mergeInto(balance, raw, rc, false)
		})
}
