package client

import "github.com/fivetwenty-io/asyncstripe/pkg/stripe"

// CardsClient implements stripe.CardsClient. Cards are addressed through the
// customer, recipient or account they belong to.
type CardsClient struct {
	updateable[*stripe.Card]
	deletable[*stripe.Card]
}

// NewCardsClient creates a new cards client.
func NewCardsClient(r *requestor) *CardsClient {
	res := newResource(r, stripe.KindCard, stripe.NewCard)

	return &CardsClient{
		updateable: updateable[*stripe.Card]{res},
		deletable:  deletable[*stripe.Card]{res},
	}
}

// BankAccountsClient implements stripe.BankAccountsClient.
type BankAccountsClient struct {
	updateable[*stripe.BankAccount]
	deletable[*stripe.BankAccount]
}

// NewBankAccountsClient creates a new bank accounts client.
func NewBankAccountsClient(r *requestor) *BankAccountsClient {
	res := newResource(r, stripe.KindBankAccount, stripe.NewBankAccount)

	return &BankAccountsClient{
		updateable: updateable[*stripe.BankAccount]{res},
		deletable:  deletable[*stripe.BankAccount]{res},
	}
}
