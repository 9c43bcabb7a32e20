package fakestripe

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func buildInvoiceItem(s *Server, params map[string]interface{}) (Record, error) {
	customer := stringParam(params, "customer")
	if customer == "" {
		return nil, missingParam("customer")
	}

	if _, ok := s.store.Get(collectionCustomers, customer); !ok {
		return nil, invalidRequest("No such customer: "+customer, "customer")
	}

	amount, ok := intParam(params, "amount")
	if !ok {
		return nil, missingParam("amount")
	}

	currency := stringParam(params, "currency")
	if currency == "" {
		return nil, missingParam("currency")
	}

	return Record{
		"customer":    customer,
		"amount":      amount,
		"currency":    currency,
		"description": params["description"],
		"invoice":     params["invoice"],
		"date":        now(),
		"proration":   false,
		"livemode":    false,
		"metadata":    params["metadata"],
	}, nil
}

func pendingItemsOf(customer string) func(Record) bool {
	return func(rec Record) bool {
		return rec["customer"] == customer && rec["invoice"] == nil
	}
}

// lineItems turns pending invoice items and live subscriptions into invoice
// lines and returns their total.
func (s *Server) lineItems(customer string, items []Record, withSubscriptions bool) ([]Record, int64, string) {
	lines := make([]Record, 0, len(items))
	currency := ""

	var total int64

	for _, item := range items {
		amount, _ := item["amount"].(int64)
		total += amount

		if c, ok := item["currency"].(string); ok {
			currency = c
		}

		line := Record{}
		for k, v := range item {
			line[k] = v
		}

		line["object"] = "line_item"
		line["type"] = "invoiceitem"
		lines = append(lines, line)
	}

	if !withSubscriptions {
		return lines, total, currency
	}

	for _, sub := range s.store.List(collectionSubscriptions, activeSubscriptionOf(customer)) {
		plan, _ := sub["plan"].(map[string]interface{})
		amount, _ := plan["amount"].(int64)
		quantity, _ := sub["quantity"].(int64)
		total += amount * quantity

		if c, ok := plan["currency"].(string); ok {
			currency = c
		}

		lines = append(lines, Record{
			"id":       sub["id"],
			"object":   "line_item",
			"type":     "subscription",
			"amount":   amount * quantity,
			"currency": plan["currency"],
			"plan":     plan,
			"quantity": quantity,
		})
	}

	return lines, total, currency
}

// buildInvoice collects the customer's pending invoice items.
func buildInvoice(s *Server, params map[string]interface{}) (Record, error) {
	customer := stringParam(params, "customer")
	if customer == "" {
		return nil, missingParam("customer")
	}

	if _, ok := s.store.Get(collectionCustomers, customer); !ok {
		return nil, invalidRequest("No such customer: "+customer, "customer")
	}

	items := s.store.List(collectionInvoiceItems, pendingItemsOf(customer))
	if len(items) == 0 {
		return nil, invalidRequest("Nothing to invoice for customer", "")
	}

	id := NewID("in")

	_, total, currency := s.lineItems(customer, items, false)

	for _, item := range items {
		itemID, _ := item["id"].(string)
		s.store.Update(collectionInvoiceItems, itemID, func(rec Record) { rec["invoice"] = id })
	}

	return Record{
		"id":            id,
		"customer":      customer,
		"amount_due":    total,
		"subtotal":      total,
		"total":         total,
		"currency":      currency,
		"paid":          false,
		"closed":        false,
		"attempted":     false,
		"attempt_count": int64(0),
		"charge":        nil,
		"subscription":  params["subscription"],
		"description":   params["description"],
		"date":          now(),
		"livemode":      false,
		"metadata":      params["metadata"],
	}, nil
}

func renderInvoice(s *Server, rec Record) Record {
	id, _ := rec["id"].(string)
	customer, _ := rec["customer"].(string)

	items := s.store.List(collectionInvoiceItems, func(r Record) bool { return r["invoice"] == id })
	lines, _, _ := s.lineItems(customer, items, false)
	rec["lines"] = listRecord("/v1/invoices/"+id+"/lines", lines, false)

	return rec
}

func (s *Server) payInvoice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	invoice, ok := s.store.Get(collectionInvoices, id)
	if !ok {
		writeError(w, notFound("invoice", id))

		return
	}

	if paid, _ := invoice["paid"].(bool); paid {
		writeError(w, invalidRequest("Invoice is already paid", ""))

		return
	}

	var chargeID interface{}

	if amount, _ := invoice["amount_due"].(int64); amount > 0 {
		charge, err := s.build(s.kind(collectionCharges), map[string]interface{}{
			"amount":   amount,
			"currency": invoice["currency"],
			"customer": invoice["customer"],
			"invoice":  id,
		})
		if err != nil {
			s.store.Update(collectionInvoices, id, func(rec Record) {
				count, _ := rec["attempt_count"].(int64)
				rec["attempted"] = true
				rec["attempt_count"] = count + 1
			})
			writeError(w, err)

			return
		}

		chargeID = charge["id"]
	}

	rec, _ := s.store.Update(collectionInvoices, id, func(rec Record) {
		count, _ := rec["attempt_count"].(int64)
		rec["paid"] = true
		rec["closed"] = true
		rec["attempted"] = true
		rec["attempt_count"] = count + 1
		rec["charge"] = chargeID
	})

	s.emit("invoice.payment_succeeded", rec)
	writeJSON(w, http.StatusOK, renderInvoice(s, rec))
}

// upcomingInvoice previews the next invoice without storing it.
func (s *Server) upcomingInvoice(w http.ResponseWriter, r *http.Request) {
	params, ok := s.parseOrFail(w, r)
	if !ok {
		return
	}

	customer := stringParam(params, "customer")
	if customer == "" {
		writeError(w, missingParam("customer"))

		return
	}

	if _, ok := s.customerOr404(w, customer); !ok {
		return
	}

	items := s.store.List(collectionInvoiceItems, pendingItemsOf(customer))

	lines, total, currency := s.lineItems(customer, items, true)
	if len(lines) == 0 {
		writeError(w, &apiError{
			status:  http.StatusNotFound,
			typ:     "invalid_request_error",
			message: fmt.Sprintf("No upcoming invoices for customer: %s", customer),
		})

		return
	}

	writeJSON(w, http.StatusOK, Record{
		"object":        "invoice",
		"customer":      customer,
		"amount_due":    total,
		"subtotal":      total,
		"total":         total,
		"currency":      currency,
		"paid":          false,
		"closed":        false,
		"attempted":     false,
		"attempt_count": int64(0),
		"date":          now(),
		"livemode":      false,
		"lines":         listRecord("/v1/invoices/upcoming/lines?customer="+customer, lines, false),
	})
}
