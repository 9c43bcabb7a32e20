package fakestripe

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

// getPlatformAccount returns the account the key belongs to, or the
// connected account named by Stripe-Account.
func (s *Server) getPlatformAccount(w http.ResponseWriter, r *http.Request) {
	id := s.accountID
	if connected := r.Header.Get("Stripe-Account"); connected != "" {
		id = connected
	}

	rec, ok := s.store.Get(collectionAccounts, id)
	if !ok {
		writeError(w, notFound("account", id))

		return
	}

	writeJSON(w, http.StatusOK, rec)
}

func buildAccount(_ *Server, params map[string]interface{}) (Record, error) {
	country := stringParam(params, "country")
	if country == "" {
		country = "US"
	}

	managed := boolParam(params, "managed", false)

	rec := Record{
		"email":             params["email"],
		"country":           country,
		"managed":           managed,
		"charges_enabled":   true,
		"transfers_enabled": managed,
		"default_currency":  "usd",
		"metadata":          params["metadata"],
	}

	if managed {
		rec["keys"] = Record{
			"secret":      NewID("sk_test"),
			"publishable": NewID("pk_test"),
		}
	}

	return rec, nil
}

func buildTransfer(s *Server, params map[string]interface{}) (Record, error) {
	amount, ok := intParam(params, "amount")
	if !ok {
		return nil, missingParam("amount")
	}

	currency := stringParam(params, "currency")
	if currency == "" {
		return nil, missingParam("currency")
	}

	recipient := stringParam(params, "recipient")
	destination := stringParam(params, "destination")

	switch {
	case recipient != "":
		if _, found := s.store.Get(collectionRecipients, recipient); !found {
			return nil, invalidRequest("No such recipient: "+recipient, "recipient")
		}
	case destination == "":
		return nil, missingParam("destination")
	}

	return Record{
		"amount":          amount,
		"amount_reversed": int64(0),
		"currency":        currency,
		"recipient":       params["recipient"],
		"destination":     params["destination"],
		"description":     params["description"],
		"status":          "pending",
		"reversed":        false,
		"livemode":        false,
		"metadata":        params["metadata"],
	}, nil
}

func renderTransfer(s *Server, rec Record) Record {
	id, _ := rec["id"].(string)
	reversals := s.store.List(collectionReversals, func(r Record) bool { return r["transfer"] == id })
	rec["reversals"] = listRecord("/v1/transfers/"+id+"/reversals", reversals, false)

	return rec
}

func (s *Server) cancelTransfer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var failure error

	rec, ok := s.store.Update(collectionTransfers, id, func(rec Record) {
		if rec["status"] != "pending" {
			failure = invalidRequest(fmt.Sprintf("Transfer %s cannot be canceled.", id), "")

			return
		}

		rec["status"] = "canceled"
	})

	switch {
	case !ok:
		writeError(w, notFound("transfer", id))
	case failure != nil:
		writeError(w, failure)
	default:
		writeJSON(w, http.StatusOK, renderTransfer(s, rec))
	}
}

// reverse books amount against the parent in collection and returns the
// amount actually taken back.
func (s *Server) reverse(collection, id, field string, params map[string]interface{}) (int64, interface{}, bool, error) {
	var (
		failure  error
		taken    int64
		currency interface{}
	)

	_, ok := s.store.Update(collection, id, func(rec Record) {
		total, _ := rec["amount"].(int64)
		already, _ := rec["amount_"+field].(int64)
		remaining := total - already

		amount, set := intParam(params, "amount")
		if !set {
			amount = remaining
		}

		if amount <= 0 || amount > remaining {
			failure = invalidRequest(
				fmt.Sprintf("Amount (%d) is greater than the amount remaining (%d)", amount, remaining), "amount")

			return
		}

		rec["amount_"+field] = already + amount
		rec[field] = already+amount == total
		taken = amount
		currency = rec["currency"]
	})

	return taken, currency, ok, failure
}

func (s *Server) createReversal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	params, ok := s.parseOrFail(w, r)
	if !ok {
		return
	}

	amount, currency, found, err := s.reverse(collectionTransfers, id, "reversed", params)

	switch {
	case !found:
		writeError(w, notFound("transfer", id))

		return
	case err != nil:
		writeError(w, err)

		return
	}

	metadata := params["metadata"]
	if metadata == nil {
		metadata = Record{}
	}

	rec := s.store.Insert(collectionReversals, "trr", Record{
		"object":   "transfer_reversal",
		"transfer": id,
		"amount":   amount,
		"currency": currency,
		"metadata": metadata,
	})

	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) listNested(w http.ResponseWriter, r *http.Request, collection, field string) {
	id := chi.URLParam(r, "id")

	params, ok := s.parseOrFail(w, r)
	if !ok {
		return
	}

	s.writePage(w, r, s.store.List(collection, func(rec Record) bool { return rec[field] == id }), params)
}

func (s *Server) listReversals(w http.ResponseWriter, r *http.Request) {
	s.listNested(w, r, collectionReversals, "transfer")
}

func (s *Server) updateReversal(w http.ResponseWriter, r *http.Request) {
	s.updateNested(w, r, collectionReversals, "transfer_reversal", "transfer")
}

func renderApplicationFee(s *Server, rec Record) Record {
	id, _ := rec["id"].(string)
	refunds := s.store.List(collectionFeeRefunds, func(r Record) bool { return r["fee"] == id })
	rec["refunds"] = listRecord("/v1/application_fees/"+id+"/refunds", refunds, false)

	return rec
}

func (s *Server) refundApplicationFee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	params, ok := s.parseOrFail(w, r)
	if !ok {
		return
	}

	amount, currency, found, err := s.reverse(collectionApplicationFees, id, "refunded", params)

	switch {
	case !found:
		writeError(w, notFound("application_fee", id))

		return
	case err != nil:
		writeError(w, err)

		return
	}

	s.store.Insert(collectionFeeRefunds, "fr", Record{
		"object":   "fee_refund",
		"fee":      id,
		"amount":   amount,
		"currency": currency,
		"metadata": Record{},
	})

	fee, _ := s.store.Get(collectionApplicationFees, id)
	writeJSON(w, http.StatusOK, renderApplicationFee(s, fee))
}

func (s *Server) listFeeRefunds(w http.ResponseWriter, r *http.Request) {
	s.listNested(w, r, collectionFeeRefunds, "fee")
}

func (s *Server) updateFeeRefund(w http.ResponseWriter, r *http.Request) {
	s.updateNested(w, r, collectionFeeRefunds, "fee_refund", "fee")
}

func buildBitcoinReceiver(_ *Server, params map[string]interface{}) (Record, error) {
	amount, ok := intParam(params, "amount")
	if !ok {
		return nil, missingParam("amount")
	}

	currency := stringParam(params, "currency")
	if currency == "" {
		return nil, missingParam("currency")
	}

	if stringParam(params, "email") == "" {
		return nil, missingParam("email")
	}

	return Record{
		"amount":                  amount,
		"currency":                currency,
		"email":                   params["email"],
		"description":             params["description"],
		"bitcoin_amount":          amount * 10000,
		"inbound_address":         "test_" + strings.TrimPrefix(NewID("btc"), "btc_"),
		"active":                  false,
		"filled":                  false,
		"uncaptured_funds":        false,
		"amount_received":         int64(0),
		"bitcoin_amount_received": int64(0),
		"livemode":                false,
		"metadata":                params["metadata"],
	}, nil
}

// uploadFile stores the metadata of a multipart upload. The content itself is
// only measured.
func (s *Server) uploadFile(w http.ResponseWriter, r *http.Request) {
	params, ok := s.parseOrFail(w, r)
	if !ok {
		return
	}

	purpose := stringParam(params, "purpose")
	if purpose == "" {
		writeError(w, missingParam("purpose"))

		return
	}

	if r.MultipartForm == nil || len(r.MultipartForm.File["file"]) == 0 {
		writeError(w, missingParam("file"))

		return
	}

	header := r.MultipartForm.File["file"][0]

	file, err := header.Open()
	if err != nil {
		writeError(w, err)

		return
	}
	defer file.Close()

	size, err := io.Copy(io.Discard, file)
	if err != nil {
		writeError(w, err)

		return
	}

	id := NewID("file")
	rec := s.store.Insert(collectionFiles, "file", Record{
		"id":       id,
		"object":   "file_upload",
		"purpose":  purpose,
		"size":     size,
		"filename": header.Filename,
		"type":     strings.TrimPrefix(filepath.Ext(header.Filename), "."),
		"url":      "https://files.stripe.com/files/" + id,
	})

	writeJSON(w, http.StatusOK, rec)
}
