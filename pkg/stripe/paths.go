package stripe

import (
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/asyncstripe/internal/constants"
)

// Object kinds as declared by the API's "object" field.
const (
	KindAccount              = "account"
	KindApplicationFee       = "application_fee"
	KindApplicationFeeRefund = "fee_refund"
	KindBalance              = "balance"
	KindBankAccount          = "bank_account"
	KindBitcoinReceiver      = "bitcoin_receiver"
	KindBitcoinTransaction   = "bitcoin_transaction"
	KindCard                 = "card"
	KindCharge               = "charge"
	KindCoupon               = "coupon"
	KindCustomer             = "customer"
	KindDispute              = "dispute"
	KindEvent                = "event"
	KindFileUpload           = "file_upload"
	KindInvoice              = "invoice"
	KindInvoiceItem          = "invoiceitem"
	KindList                 = "list"
	KindPlan                 = "plan"
	KindRecipient            = "recipient"
	KindRefund               = "refund"
	KindReversal             = "transfer_reversal"
	KindSubscription         = "subscription"
	KindToken                = "token"
	KindTransfer             = "transfer"
)

const apiPrefix = constants.APIPathPrefix

var classPaths = map[string]string{
	KindAccount:            apiPrefix + "/accounts",
	KindApplicationFee:     apiPrefix + "/application_fees",
	KindBalance:            apiPrefix + "/balance",
	KindBitcoinReceiver:    apiPrefix + "/bitcoin/receivers",
	KindBitcoinTransaction: apiPrefix + "/bitcoin/transactions",
	KindCharge:             apiPrefix + "/charges",
	KindCoupon:             apiPrefix + "/coupons",
	KindCustomer:           apiPrefix + "/customers",
	KindDispute:            apiPrefix + "/disputes",
	KindEvent:              apiPrefix + "/events",
	KindFileUpload:         apiPrefix + "/files",
	KindInvoice:            apiPrefix + "/invoices",
	KindInvoiceItem:        apiPrefix + "/invoiceitems",
	KindPlan:               apiPrefix + "/plans",
	KindRecipient:          apiPrefix + "/recipients",
	KindRefund:             apiPrefix + "/refunds",
	KindToken:              apiPrefix + "/tokens",
	KindTransfer:           apiPrefix + "/transfers",
}

// ClassPath returns the collection path for kind, or "" for kinds that only
// exist nested under a parent.
func ClassPath(kind string) string {
	return classPaths[kind]
}

// UsesUploadBase reports whether kind is served from the upload host.
func UsesUploadBase(kind string) bool {
	return kind == KindFileUpload
}

// InstancePathFor joins a collection path and an escaped id.
func InstancePathFor(classPath, id string) (string, error) {
	if id == "" {
		return "", NewInvalidRequestError("Could not determine which URL to request: instance has invalid ID", "id")
	}

	return classPath + "/" + url.PathEscape(id), nil
}

func nestedPath(parentClass, parentID, segment, id string) (string, error) {
	parent, err := InstancePathFor(parentClass, parentID)
	if err != nil {
		return "", err
	}

	return InstancePathFor(parent+"/"+segment, id)
}

func missingParent(o *Object, parents string) error {
	return NewInvalidRequestError(
		fmt.Sprintf("Could not determine which URL to request: %s instance has no %s", o.describe(), parents), parents)
}
