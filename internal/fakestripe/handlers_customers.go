package fakestripe

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const billingPeriod = 30 * 24 * 60 * 60

func buildCustomer(s *Server, params map[string]interface{}) (Record, error) {
	id := NewID("cus")

	var discount Record

	if code := stringParam(params, "coupon"); code != "" {
		d, err := s.discountFor(code, id)
		if err != nil {
			return nil, err
		}

		discount = d
	}

	planID := stringParam(params, "plan")
	if planID != "" {
		if _, ok := s.store.Get(collectionPlans, planID); !ok {
			return nil, invalidRequest("No such plan: "+planID, "plan")
		}
	}

	rec := Record{
		"id":              id,
		"email":           params["email"],
		"description":     params["description"],
		"account_balance": int64(0),
		"currency":        nil,
		"delinquent":      false,
		"discount":        discount,
		"default_source":  nil,
		"livemode":        false,
		"metadata":        params["metadata"],
	}

	if balance, ok := intParam(params, "account_balance"); ok {
		rec["account_balance"] = balance
	}

	if params["source"] != nil || params["card"] != nil {
		source := params["source"]
		if source == nil {
			source = params["card"]
		}

		card, err := s.attachSource(id, source)
		if err != nil {
			return nil, err
		}

		rec["default_source"] = card["id"]
	}

	if planID != "" {
		if _, err := s.subscribe(id, params); err != nil {
			return nil, err
		}
	}

	return rec, nil
}

// adjustCustomer attaches a new source or coupon named in update params.
func adjustCustomer(s *Server, id string, params map[string]interface{}) error {
	if source := params["source"]; source != nil {
		card, err := s.attachSource(id, source)
		if err != nil {
			return err
		}

		delete(params, "source")
		params["default_source"] = card["id"]
	}

	if code := stringParam(params, "coupon"); code != "" {
		discount, err := s.discountFor(code, id)
		if err != nil {
			return err
		}

		delete(params, "coupon")
		s.store.Update(collectionCustomers, id, func(rec Record) { rec["discount"] = discount })
	}

	return nil
}

func renderCustomer(s *Server, rec Record) Record {
	id, _ := rec["id"].(string)

	sources := s.store.List(collectionSources, func(r Record) bool { return r["customer"] == id })
	rec["sources"] = listRecord("/v1/customers/"+id+"/sources", sources, false)

	subs := s.store.List(collectionSubscriptions, activeSubscriptionOf(id))
	rec["subscriptions"] = listRecord("/v1/customers/"+id+"/subscriptions", subs, false)

	return rec
}

func (s *Server) discountFor(code, customer string) (Record, error) {
	coupon, ok := s.store.Get(collectionCoupons, code)
	if !ok {
		return nil, invalidRequest("No such coupon: "+code, "coupon")
	}

	s.store.Update(collectionCoupons, code, func(rec Record) {
		redeemed, _ := rec["times_redeemed"].(int64)
		rec["times_redeemed"] = redeemed + 1
	})

	return Record{
		"object":   "discount",
		"coupon":   coupon,
		"customer": customer,
		"start":    now(),
		"end":      nil,
	}, nil
}

// attachSource stores a payment source on customer.
func (s *Server) attachSource(customer string, source interface{}) (Record, error) {
	rec, err := s.resolveSource(source, "")
	if err != nil {
		return nil, err
	}

	rec["customer"] = customer

	prefix := "card"
	if rec["object"] == "bank_account" {
		prefix = "ba"
	}

	return s.store.Insert(collectionSources, prefix, rec), nil
}

func (s *Server) customerOr404(w http.ResponseWriter, id string) (Record, bool) {
	rec, ok := s.store.Get(collectionCustomers, id)
	if !ok {
		writeError(w, notFound("customer", id))
	}

	return rec, ok
}

func (s *Server) createSource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	params, ok := s.parseOrFail(w, r)
	if !ok {
		return
	}

	customer, ok := s.customerOr404(w, id)
	if !ok {
		return
	}

	source := params["source"]
	if source == nil {
		source = params["card"]
	}

	card, err := s.attachSource(id, source)
	if err != nil {
		writeError(w, err)

		return
	}

	if refID(customer["default_source"]) == "" {
		s.store.Update(collectionCustomers, id, func(rec Record) { rec["default_source"] = card["id"] })
	}

	writeJSON(w, http.StatusOK, card)
}

func (s *Server) listSources(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	params, ok := s.parseOrFail(w, r)
	if !ok {
		return
	}

	if _, ok := s.customerOr404(w, id); !ok {
		return
	}

	object := stringParam(params, "object")
	items := s.store.List(collectionSources, func(rec Record) bool {
		return rec["customer"] == id && (object == "" || rec["object"] == object)
	})

	s.writePage(w, r, items, params)
}

func (s *Server) writePage(w http.ResponseWriter, r *http.Request, items []Record, params map[string]interface{}) {
	page, err := paginate(r.URL.Path, items, params)
	if err != nil {
		writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, page)
}

// nested loads the child record sid of collection that belongs to the parent
// named by field.
func (s *Server) nested(w http.ResponseWriter, r *http.Request, collection, object, field string) (string, bool) {
	parent := chi.URLParam(r, "id")
	sid := chi.URLParam(r, "sid")

	rec, ok := s.store.Get(collection, sid)
	if !ok || refID(rec[field]) != parent {
		writeError(w, notFound(object, sid))

		return "", false
	}

	return sid, true
}

func (s *Server) getSource(w http.ResponseWriter, r *http.Request) {
	sid, ok := s.nested(w, r, collectionSources, "source", "customer")
	if !ok {
		return
	}

	rec, _ := s.store.Get(collectionSources, sid)
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) updateNested(w http.ResponseWriter, r *http.Request, collection, object, field string) {
	sid, ok := s.nested(w, r, collection, object, field)
	if !ok {
		return
	}

	params, ok := s.parseOrFail(w, r)
	if !ok {
		return
	}

	rec, _ := s.store.Update(collection, sid, func(rec Record) { applyUpdate(rec, params) })
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) updateSource(w http.ResponseWriter, r *http.Request) {
	s.updateNested(w, r, collectionSources, "source", "customer")
}

func (s *Server) deleteSource(w http.ResponseWriter, r *http.Request) {
	sid, ok := s.nested(w, r, collectionSources, "source", "customer")
	if !ok {
		return
	}

	s.store.Delete(collectionSources, sid)

	customer := chi.URLParam(r, "id")
	s.store.Update(collectionCustomers, customer, func(rec Record) {
		if refID(rec["default_source"]) == sid {
			rec["default_source"] = nil
		}
	})

	writeJSON(w, http.StatusOK, Record{"id": sid, "deleted": true})
}

func activeSubscriptionOf(customer string) func(Record) bool {
	return func(rec Record) bool {
		return rec["customer"] == customer && rec["status"] != "canceled"
	}
}

// subscribe creates a subscription for customer from params.
func (s *Server) subscribe(customer string, params map[string]interface{}) (Record, error) {
	planID := stringParam(params, "plan")
	if planID == "" {
		return nil, missingParam("plan")
	}

	plan, ok := s.store.Get(collectionPlans, planID)
	if !ok {
		return nil, invalidRequest("No such plan: "+planID, "plan")
	}

	start := now()
	status := "active"

	if days, _ := plan["trial_period_days"].(int64); days > 0 {
		status = "trialing"
	}

	quantity, ok := intParam(params, "quantity")
	if !ok {
		quantity = 1
	}

	var discount interface{}

	if code := stringParam(params, "coupon"); code != "" {
		d, err := s.discountFor(code, customer)
		if err != nil {
			return nil, err
		}

		discount = d
	}

	metadata := params["metadata"]
	if metadata == nil {
		metadata = Record{}
	}

	sub := s.store.Insert(collectionSubscriptions, "sub", Record{
		"object":               "subscription",
		"customer":             customer,
		"plan":                 plan,
		"quantity":             quantity,
		"status":               status,
		"start":                start,
		"current_period_start": start,
		"current_period_end":   start + billingPeriod,
		"cancel_at_period_end": false,
		"canceled_at":          nil,
		"discount":             discount,
		"metadata":             metadata,
	})

	s.emit("customer.subscription.created", sub)

	return sub, nil
}

// changeSubscription applies update params, swapping the plan when one is
// named.
func (s *Server) changeSubscription(id string, params map[string]interface{}) (Record, error) {
	if planID := stringParam(params, "plan"); planID != "" {
		plan, ok := s.store.Get(collectionPlans, planID)
		if !ok {
			return nil, invalidRequest("No such plan: "+planID, "plan")
		}

		params["plan"] = plan
	}

	if code := stringParam(params, "coupon"); code != "" {
		sub, _ := s.store.Get(collectionSubscriptions, id)

		discount, err := s.discountFor(code, refID(sub["customer"]))
		if err != nil {
			return nil, err
		}

		delete(params, "coupon")
		params["discount"] = discount
	}

	rec, _ := s.store.Update(collectionSubscriptions, id, func(rec Record) {
		if plan, ok := params["plan"]; ok {
			rec["plan"] = plan
			delete(params, "plan")
		}

		if discount, ok := params["discount"]; ok {
			rec["discount"] = discount
			delete(params, "discount")
		}

		applyUpdate(rec, params)
	})

	s.emit("customer.subscription.updated", rec)

	return rec, nil
}

func (s *Server) cancel(id string, atPeriodEnd bool) Record {
	rec, _ := s.store.Update(collectionSubscriptions, id, func(rec Record) {
		if atPeriodEnd {
			rec["cancel_at_period_end"] = true

			return
		}

		rec["status"] = "canceled"
		rec["canceled_at"] = now()
		rec["ended_at"] = now()
	})

	s.emit("customer.subscription.deleted", rec)

	return rec
}

func (s *Server) createSubscription(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	params, ok := s.parseOrFail(w, r)
	if !ok {
		return
	}

	if _, ok := s.customerOr404(w, id); !ok {
		return
	}

	sub, err := s.subscribe(id, params)
	if err != nil {
		writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) listSubscriptions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	params, ok := s.parseOrFail(w, r)
	if !ok {
		return
	}

	if _, ok := s.customerOr404(w, id); !ok {
		return
	}

	s.writePage(w, r, s.store.List(collectionSubscriptions, activeSubscriptionOf(id)), params)
}

func (s *Server) getSubscription(w http.ResponseWriter, r *http.Request) {
	sid, ok := s.nested(w, r, collectionSubscriptions, "subscription", "customer")
	if !ok {
		return
	}

	rec, _ := s.store.Get(collectionSubscriptions, sid)
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) updateSubscription(w http.ResponseWriter, r *http.Request) {
	sid, ok := s.nested(w, r, collectionSubscriptions, "subscription", "customer")
	if !ok {
		return
	}

	params, ok := s.parseOrFail(w, r)
	if !ok {
		return
	}

	rec, err := s.changeSubscription(sid, params)
	if err != nil {
		writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) cancelSubscription(w http.ResponseWriter, r *http.Request) {
	sid, ok := s.nested(w, r, collectionSubscriptions, "subscription", "customer")
	if !ok {
		return
	}

	params, ok := s.parseOrFail(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, s.cancel(sid, boolParam(params, "at_period_end", false)))
}

func (s *Server) deleteSubscriptionDiscount(w http.ResponseWriter, r *http.Request) {
	sid, ok := s.nested(w, r, collectionSubscriptions, "subscription", "customer")
	if !ok {
		return
	}

	s.dropDiscount(w, collectionSubscriptions, sid, "subscription")
}

func (s *Server) deleteCustomerDiscount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, ok := s.customerOr404(w, id); !ok {
		return
	}

	s.dropDiscount(w, collectionCustomers, id, "customer")
}

func (s *Server) dropDiscount(w http.ResponseWriter, collection, id, object string) {
	var had bool

	s.store.Update(collection, id, func(rec Record) {
		had = rec["discount"] != nil
		rec["discount"] = nil
	})

	if !had {
		writeError(w, &apiError{
			status:  http.StatusNotFound,
			typ:     "invalid_request_error",
			message: fmt.Sprintf("No active discount for %s: %s", object, id),
		})

		return
	}

	writeJSON(w, http.StatusOK, deletedRecord("", "discount"))
}

// firstSubscription returns the newest live subscription of customer.
func (s *Server) firstSubscription(customer string) (Record, bool) {
	subs := s.store.List(collectionSubscriptions, activeSubscriptionOf(customer))
	if len(subs) == 0 {
		return nil, false
	}

	return subs[0], true
}

func (s *Server) updateLegacySubscription(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	params, ok := s.parseOrFail(w, r)
	if !ok {
		return
	}

	if _, ok := s.customerOr404(w, id); !ok {
		return
	}

	var (
		rec Record
		err error
	)

	if existing, found := s.firstSubscription(id); found {
		sid, _ := existing["id"].(string)
		rec, err = s.changeSubscription(sid, params)
	} else {
		rec, err = s.subscribe(id, params)
	}

	if err != nil {
		writeError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) cancelLegacySubscription(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	params, ok := s.parseOrFail(w, r)
	if !ok {
		return
	}

	if _, ok := s.customerOr404(w, id); !ok {
		return
	}

	existing, found := s.firstSubscription(id)
	if !found {
		writeError(w, &apiError{
			status:  http.StatusNotFound,
			typ:     "invalid_request_error",
			message: fmt.Sprintf("Customer %s does not have a subscription", id),
		})

		return
	}

	sid, _ := existing["id"].(string)
	writeJSON(w, http.StatusOK, s.cancel(sid, boolParam(params, "at_period_end", false)))
}
