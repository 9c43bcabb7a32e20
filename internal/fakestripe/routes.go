package fakestripe

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

const (
	collectionAccounts         = "accounts"
	collectionApplicationFees  = "application_fees"
	collectionBitcoinReceivers = "bitcoin_receivers"
	collectionCharges          = "charges"
	collectionCoupons          = "coupons"
	collectionCustomers        = "customers"
	collectionDisputes         = "disputes"
	collectionEvents           = "events"
	collectionFeeRefunds       = "fee_refunds"
	collectionFiles            = "files"
	collectionInvoiceItems     = "invoiceitems"
	collectionInvoices         = "invoices"
	collectionPlans            = "plans"
	collectionRecipients       = "recipients"
	collectionRefunds          = "refunds"
	collectionReversals        = "reversals"
	collectionSources          = "sources"
	collectionSubscriptions    = "subscriptions"
	collectionTokens           = "tokens"
	collectionTransfers        = "transfers"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

// kind describes one top-level collection of the API.
type kind struct {
	collection string
	path       string
	object     string
	prefix     string
	// filters are the params a list request may narrow the result by.
	filters []string
	// build turns create params into a record. The default copies params.
	build func(s *Server, params map[string]interface{}) (Record, error)
	// adjust rewrites update params before they are applied.
	adjust func(s *Server, id string, params map[string]interface{}) error
	// render decorates a stored record before it is returned.
	render func(s *Server, rec Record) Record
	// created is emitted as an event after a successful create.
	created bool
	// readOnly kinds expose only list and retrieve.
	readOnly bool
	// permanent kinds cannot be deleted.
	permanent bool
}

func (s *Server) kinds() []kind {
	return []kind{
		{collection: collectionAccounts, path: "/accounts", object: "account", prefix: "acct", build: buildAccount, created: true},
		{collection: collectionApplicationFees, path: "/application_fees", object: "application_fee", prefix: "fee", readOnly: true, render: renderApplicationFee},
		{collection: collectionBitcoinReceivers, path: "/bitcoin/receivers", object: "bitcoin_receiver", prefix: "btcrcv", build: buildBitcoinReceiver, created: true},
		{collection: collectionCharges, path: "/charges", object: "charge", prefix: "ch", filters: []string{"customer"}, build: buildCharge, render: renderCharge, created: true, permanent: true},
		{collection: collectionCoupons, path: "/coupons", object: "coupon", prefix: "co", build: buildCoupon, created: true},
		{collection: collectionCustomers, path: "/customers", object: "customer", prefix: "cus", build: buildCustomer, adjust: adjustCustomer, render: renderCustomer, created: true},
		{collection: collectionDisputes, path: "/disputes", object: "dispute", prefix: "dp", filters: []string{"charge"}, permanent: true},
		{collection: collectionEvents, path: "/events", object: "event", prefix: "evt", filters: []string{"type"}, readOnly: true},
		{collection: collectionFiles, path: "/files", object: "file_upload", prefix: "file", filters: []string{"purpose"}, readOnly: true},
		{collection: collectionInvoiceItems, path: "/invoiceitems", object: "invoiceitem", prefix: "ii", filters: []string{"customer", "invoice"}, build: buildInvoiceItem, created: true},
		{collection: collectionInvoices, path: "/invoices", object: "invoice", prefix: "in", filters: []string{"customer"}, build: buildInvoice, render: renderInvoice, created: true, permanent: true},
		{collection: collectionPlans, path: "/plans", object: "plan", prefix: "plan", build: buildPlan, created: true},
		{collection: collectionRecipients, path: "/recipients", object: "recipient", prefix: "rp", created: true},
		{collection: collectionRefunds, path: "/refunds", object: "refund", prefix: "re", filters: []string{"charge"}, build: buildRefund, created: true, permanent: true},
		{collection: collectionTokens, path: "/tokens", object: "token", prefix: "tok", build: buildToken, permanent: true},
		{collection: collectionTransfers, path: "/transfers", object: "transfer", prefix: "tr", filters: []string{"recipient"}, build: buildTransfer, render: renderTransfer, created: true, permanent: true},
	}
}

// Routes mounts every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Use(s.authenticate)
	r.Use(s.record)
	r.Use(s.idempotency)

	r.Get("/account", s.getPlatformAccount)
	r.Get("/balance", s.getBalance)
	r.Get("/invoices/upcoming", s.upcomingInvoice)

	r.Post("/charges/{id}/capture", s.captureCharge)
	r.Post("/charges/{id}/refund", s.refundCharge)
	r.Post("/charges/{id}/dispute", s.updateChargeDispute)
	r.Post("/charges/{id}/dispute/close", s.closeChargeDispute)
	r.Post("/disputes/{id}/close", s.closeDispute)

	r.Post("/customers/{id}/sources", s.createSource)
	r.Get("/customers/{id}/sources", s.listSources)
	r.Get("/customers/{id}/sources/{sid}", s.getSource)
	r.Post("/customers/{id}/sources/{sid}", s.updateSource)
	r.Delete("/customers/{id}/sources/{sid}", s.deleteSource)
	r.Post("/customers/{id}/subscriptions", s.createSubscription)
	r.Get("/customers/{id}/subscriptions", s.listSubscriptions)
	r.Get("/customers/{id}/subscriptions/{sid}", s.getSubscription)
	r.Post("/customers/{id}/subscriptions/{sid}", s.updateSubscription)
	r.Delete("/customers/{id}/subscriptions/{sid}", s.cancelSubscription)
	r.Delete("/customers/{id}/subscriptions/{sid}/discount", s.deleteSubscriptionDiscount)
	r.Post("/customers/{id}/subscription", s.updateLegacySubscription)
	r.Delete("/customers/{id}/subscription", s.cancelLegacySubscription)
	r.Delete("/customers/{id}/discount", s.deleteCustomerDiscount)

	r.Post("/invoices/{id}/pay", s.payInvoice)

	r.Post("/transfers/{id}/cancel", s.cancelTransfer)
	r.Post("/transfers/{id}/reversals", s.createReversal)
	r.Get("/transfers/{id}/reversals", s.listReversals)
	r.Post("/transfers/{id}/reversals/{sid}", s.updateReversal)

	r.Post("/application_fees/{id}/refund", s.refundApplicationFee)
	r.Get("/application_fees/{id}/refunds", s.listFeeRefunds)
	r.Post("/application_fees/{id}/refunds/{sid}", s.updateFeeRefund)

	r.Post("/files", s.uploadFile)

	for _, k := range s.kinds() {
		k := k

		r.Get(k.path, s.listHandler(k))
		r.Get(k.path+"/{id}", s.retrieveHandler(k))

		if k.readOnly {
			continue
		}

		r.Post(k.path, s.createHandler(k))
		r.Post(k.path+"/{id}", s.updateHandler(k))

		if !k.permanent {
			r.Delete(k.path+"/{id}", s.deleteHandler(k))
		}
	}
}

func (k kind) present(s *Server, rec Record) Record {
	if k.render != nil {
		return k.render(s, rec)
	}

	return rec
}

func (s *Server) createHandler(k kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, ok := s.parseOrFail(w, r)
		if !ok {
			return
		}

		rec, err := s.build(k, params)
		if err != nil {
			writeError(w, err)

			return
		}

		writeJSON(w, http.StatusOK, k.present(s, rec))
	}
}

// build creates and stores a record of kind k from params.
func (s *Server) build(k kind, params map[string]interface{}) (Record, error) {
	rec := Record(params)

	if k.build != nil {
		built, err := k.build(s, params)
		if err != nil {
			return nil, err
		}

		rec = built
	}

	rec["object"] = k.object
	if rec["metadata"] == nil {
		rec["metadata"] = Record{}
	}

	stored := s.store.Insert(k.collection, k.prefix, rec)

	if k.created {
		s.emit(k.object+".created", k.present(s, stored))
	}

	return stored, nil
}

func (s *Server) retrieveHandler(k kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		rec, ok := s.store.Get(k.collection, id)
		if !ok {
			writeError(w, notFound(k.object, id))

			return
		}

		writeJSON(w, http.StatusOK, k.present(s, rec))
	}
}

func (s *Server) updateHandler(k kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		params, ok := s.parseOrFail(w, r)
		if !ok {
			return
		}

		if _, exists := s.store.Get(k.collection, id); !exists {
			writeError(w, notFound(k.object, id))

			return
		}

		if k.adjust != nil {
			if err := k.adjust(s, id, params); err != nil {
				writeError(w, err)

				return
			}
		}

		rec, exists := s.store.Update(k.collection, id, func(rec Record) {
			applyUpdate(rec, params)
		})
		if !exists {
			writeError(w, notFound(k.object, id))

			return
		}

		if k.created {
			s.emit(k.object+".updated", k.present(s, rec))
		}

		writeJSON(w, http.StatusOK, k.present(s, rec))
	}
}

func (s *Server) deleteHandler(k kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if !s.store.Delete(k.collection, id) {
			writeError(w, notFound(k.object, id))

			return
		}

		writeJSON(w, http.StatusOK, deletedRecord(id, k.object))
	}
}

func (s *Server) listHandler(k kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, ok := s.parseOrFail(w, r)
		if !ok {
			return
		}

		items := s.store.List(k.collection, matchFilters(k.filters, params))
		for i, rec := range items {
			items[i] = k.present(s, rec)
		}

		s.writePage(w, r, items, params)
	}
}

func matchFilters(filters []string, params map[string]interface{}) func(Record) bool {
	return func(rec Record) bool {
		for _, field := range filters {
			want := stringParam(params, field)
			if want != "" && refID(rec[field]) != want {
				return false
			}
		}

		return true
	}
}

// refID returns the id of a field holding either an id or an expanded
// record.
func refID(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case map[string]interface{}:
		id, _ := v["id"].(string)

		return id
	}

	return ""
}

// paginate cuts items, newest first, to the page the params ask for.
func paginate(url string, items []Record, params map[string]interface{}) (Record, error) {
	limit := int64(defaultListLimit)

	if raw := stringParam(params, "limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 || n > maxListLimit {
			return nil, invalidRequest("Invalid integer: "+raw, "limit")
		}

		limit = n
	}

	if after := stringParam(params, "starting_after"); after != "" {
		idx := indexOf(items, after)
		if idx < 0 {
			return nil, invalidRequest("No such object: "+after, "starting_after")
		}

		items = items[idx+1:]
	} else if before := stringParam(params, "ending_before"); before != "" {
		idx := indexOf(items, before)
		if idx < 0 {
			return nil, invalidRequest("No such object: "+before, "ending_before")
		}

		items = items[:idx]
		if int64(len(items)) > limit {
			items = items[int64(len(items))-limit:]
		}
	}

	hasMore := int64(len(items)) > limit
	if hasMore {
		items = items[:limit]
	}

	return listRecord(url, items, hasMore), nil
}

func indexOf(items []Record, id string) int {
	for i, rec := range items {
		if rec["id"] == id {
			return i
		}
	}

	return -1
}

func listRecord(url string, items []Record, hasMore bool) Record {
	data := make([]interface{}, len(items))
	for i, rec := range items {
		data[i] = rec
	}

	return Record{
		"object":      "list",
		"url":         url,
		"has_more":    hasMore,
		"total_count": int64(len(items)),
		"data":        data,
	}
}

func deletedRecord(id, object string) Record {
	rec := Record{"deleted": true, "object": object}
	if id != "" {
		rec["id"] = id
	}

	return rec
}

// applyUpdate merges params into rec. Empty strings clear a field, and a
// metadata key set to "" is removed.
func applyUpdate(rec Record, params map[string]interface{}) {
	for key, value := range params {
		if key == "id" || key == "object" {
			continue
		}

		if key == "metadata" {
			mergeMetadata(rec, value)

			continue
		}

		if value == "" {
			rec[key] = nil

			continue
		}

		current, isMap := rec[key].(map[string]interface{})
		incoming, incomingMap := value.(map[string]interface{})

		if isMap && incomingMap {
			applyUpdate(current, incoming)

			continue
		}

		rec[key] = value
	}
}

func mergeMetadata(rec Record, value interface{}) {
	incoming, ok := value.(map[string]interface{})
	if !ok {
		if value == "" {
			rec["metadata"] = Record{}
		}

		return
	}

	current, ok := rec["metadata"].(map[string]interface{})
	if !ok {
		current = Record{}
		rec["metadata"] = current
	}

	for k, v := range incoming {
		if v == "" {
			delete(current, k)

			continue
		}

		current[k] = v
	}
}

// emit records an event carrying a snapshot of obj.
func (s *Server) emit(eventType string, obj Record) {
	s.store.Insert(collectionEvents, "evt", Record{
		"object":   "event",
		"type":     eventType,
		"livemode": false,
		"data":     Record{"object": obj},
	})
}

// kind returns the descriptor of collection.
func (s *Server) kind(collection string) kind {
	for _, k := range s.kinds() {
		if k.collection == collection {
			return k
		}
	}

	return kind{collection: collection}
}

func (s *Server) parseOrFail(w http.ResponseWriter, r *http.Request) (map[string]interface{}, bool) {
	params, err := parseParams(r)
	if err != nil {
		writeError(w, invalidRequest(err.Error(), ""))

		return nil, false
	}

	return params, true
}
