package stripe

import "sort"

// registry maps an API object kind to the constructor of its typed resource.
// It is never modified after package initialization.
var registry = map[string]func() Resource{
	KindAccount:              func() Resource { return NewAccount("") },
	KindApplicationFee:       func() Resource { return NewApplicationFee("") },
	KindApplicationFeeRefund: func() Resource { return NewApplicationFeeRefund("") },
	KindBalance:              func() Resource { return NewBalance() },
	KindBankAccount:          func() Resource { return NewBankAccount("") },
	KindBitcoinReceiver:      func() Resource { return NewBitcoinReceiver("") },
	KindBitcoinTransaction:   func() Resource { return NewBitcoinTransaction("") },
	KindCard:                 func() Resource { return NewCard("") },
	KindCharge:               func() Resource { return NewCharge("") },
	KindCoupon:               func() Resource { return NewCoupon("") },
	KindCustomer:             func() Resource { return NewCustomer("") },
	KindDispute:              func() Resource { return NewDispute("") },
	KindEvent:                func() Resource { return NewEvent("") },
	KindFileUpload:           func() Resource { return NewFileUpload("") },
	KindInvoice:              func() Resource { return NewInvoice("") },
	KindInvoiceItem:          func() Resource { return NewInvoiceItem("") },
	KindList:                 func() Resource { return NewList() },
	KindPlan:                 func() Resource { return NewPlan("") },
	KindRecipient:            func() Resource { return NewRecipient("") },
	KindRefund:               func() Resource { return NewRefund("") },
	KindReversal:             func() Resource { return NewReversal("") },
	KindSubscription:         func() Resource { return NewSubscription("") },
	KindToken:                func() Resource { return NewToken("") },
	KindTransfer:             func() Resource { return NewTransfer("") },
}

// Kinds returns the registered object kinds in sorted order.
func Kinds() []string {
	kinds := make([]string, 0, len(registry))
	for kind := range registry {
		kinds = append(kinds, kind)
	}

	sort.Strings(kinds)

	return kinds
}

// NewResource returns an empty resource for kind, falling back to an untyped
// Object for unknown kinds.
func NewResource(kind string) Resource {
	if ctor, ok := registry[kind]; ok {
		return ctor()
	}

	return NewObject("")
}

// Materialize converts a decoded JSON value into an object graph. Records are
// typed by their "object" field, lists map element-wise, and every nested
// value is materialized the same way. Values that already are resources are
// returned unchanged.
func Materialize(value interface{}, apiKey, account string) interface{} {
	switch v := value.(type) {
	case Resource:
		return v
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = Materialize(item, apiKey, account)
		}

		return out
	case map[string]interface{}:
		kind, _ := v["object"].(string)

		res := NewResource(kind)
		base := res.Base()
		base.Bind(apiKey, account)
		base.Merge(v, false)

		return res
	default:
		return value
	}
}

// MaterializeAs materializes value and returns it as T. When the payload
// declares another kind, or none, its fields are merged into a fresh T built
// by newFn instead.
func MaterializeAs[T Resource](value interface{}, apiKey, account string, newFn func() T) (T, error) {
	if typed, ok := Materialize(value, apiKey, account).(T); ok {
		return typed, nil
	}

	var zero T

	record, ok := value.(map[string]interface{})
	if !ok {
		return zero, &APIError{ErrorInfo: ErrorInfo{Message: ErrUnexpectedType.Error()}}
	}

	res := newFn()
	res.Base().Bind(apiKey, account)
	res.Base().Merge(record, false)

	return res, nil
}
