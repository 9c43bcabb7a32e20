package fakestripe

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// Card numbers and tokens that make a charge fail the way the live API's test
// mode does.
const (
	declinedCardNumber = "4000000000000002"
	declinedToken      = "tok_chargeDeclined"
)

func cardDeclined() *apiError {
	return &apiError{
		status:  http.StatusPaymentRequired,
		typ:     "card_error",
		message: "Your card was declined.",
		code:    "card_declined",
	}
}

func cardFromDetails(details map[string]interface{}) Record {
	number := stringParam(details, "number")

	last4 := "4242"
	if len(number) >= 4 {
		last4 = number[len(number)-4:]
	}

	card := Record{
		"id":        NewID("card"),
		"object":    "card",
		"last4":     last4,
		"brand":     cardBrand(number),
		"funding":   "credit",
		"exp_month": details["exp_month"],
		"exp_year":  details["exp_year"],
		"name":      details["name"],
		"metadata":  Record{},
	}

	if number == declinedCardNumber {
		card["declined"] = true
	}

	return card
}

func cardBrand(number string) string {
	switch {
	case strings.HasPrefix(number, "34"), strings.HasPrefix(number, "37"):
		return "American Express"
	case strings.HasPrefix(number, "5"):
		return "MasterCard"
	case strings.HasPrefix(number, "6011"):
		return "Discover"
	default:
		return "Visa"
	}
}

func bankAccountFromDetails(details map[string]interface{}) Record {
	number := stringParam(details, "account_number")

	last4 := "6789"
	if len(number) >= 4 {
		last4 = number[len(number)-4:]
	}

	country := stringParam(details, "country")
	if country == "" {
		country = "US"
	}

	return Record{
		"id":             NewID("ba"),
		"object":         "bank_account",
		"last4":          last4,
		"country":        country,
		"routing_number": details["routing_number"],
		"bank_name":      "STRIPE TEST BANK",
		"status":         "new",
		"metadata":       Record{},
	}
}

func buildToken(_ *Server, params map[string]interface{}) (Record, error) {
	if card, ok := params["card"].(map[string]interface{}); ok {
		return Record{
			"type": "card",
			"card": cardFromDetails(card),
			"used": false,
		}, nil
	}

	if bank, ok := params["bank_account"].(map[string]interface{}); ok {
		return Record{
			"id":           NewID("btok"),
			"type":         "bank_account",
			"bank_account": bankAccountFromDetails(bank),
			"used":         false,
		}, nil
	}

	return nil, missingParam("card")
}

// resolveSource turns a source param into a payment source record. A string
// names a token or a source already attached to customer; a map holds card
// details.
func (s *Server) resolveSource(value interface{}, customer string) (Record, error) {
	switch v := value.(type) {
	case map[string]interface{}:
		if stringParam(v, "object") == "bank_account" {
			return bankAccountFromDetails(v), nil
		}

		return cardFromDetails(v), nil
	case string:
		if v == declinedToken {
			card := cardFromDetails(Record{"number": declinedCardNumber})

			return card, nil
		}

		if tok, ok := s.store.Get(collectionTokens, v); ok {
			if used, _ := tok["used"].(bool); used {
				return nil, invalidRequest(
					fmt.Sprintf("You cannot use a Stripe token more than once: %s.", v), "source")
			}

			s.store.Update(collectionTokens, v, func(rec Record) { rec["used"] = true })

			if card, ok := tok["card"].(map[string]interface{}); ok {
				return card, nil
			}

			if bank, ok := tok["bank_account"].(map[string]interface{}); ok {
				return bank, nil
			}
		}

		if src, ok := s.store.Get(collectionSources, v); ok && customer != "" && refID(src["customer"]) == customer {
			return src, nil
		}

		return nil, invalidRequest("No such token: "+v, "source")
	}

	return nil, missingParam("source")
}

func buildCharge(s *Server, params map[string]interface{}) (Record, error) {
	amount, ok := intParam(params, "amount")
	if !ok {
		return nil, missingParam("amount")
	}

	if amount < 50 {
		return nil, invalidRequest("Amount must be at least 50 cents", "amount")
	}

	currency := stringParam(params, "currency")
	if currency == "" {
		return nil, missingParam("currency")
	}

	customer := stringParam(params, "customer")

	var source Record

	switch {
	case params["source"] != nil:
		src, err := s.resolveSource(params["source"], customer)
		if err != nil {
			return nil, err
		}

		source = src
	case params["card"] != nil:
		src, err := s.resolveSource(params["card"], customer)
		if err != nil {
			return nil, err
		}

		source = src
	case customer != "":
		cus, found := s.store.Get(collectionCustomers, customer)
		if !found {
			return nil, invalidRequest("No such customer: "+customer, "customer")
		}

		src, found := s.store.Get(collectionSources, refID(cus["default_source"]))
		if !found {
			return nil, &apiError{
				status:  http.StatusPaymentRequired,
				typ:     "card_error",
				message: "Cannot charge a customer that has no active card",
				param:   "card",
				code:    "missing",
			}
		}

		source = src
	default:
		return nil, missingParam("source")
	}

	if declined, _ := source["declined"].(bool); declined {
		return nil, cardDeclined()
	}

	delete(source, "declined")

	id := NewID("ch")
	charge := Record{
		"id":              id,
		"amount":          amount,
		"amount_refunded": int64(0),
		"currency":        strings.ToLower(currency),
		"captured":        boolParam(params, "capture", true),
		"paid":            true,
		"refunded":        false,
		"status":          "succeeded",
		"livemode":        false,
		"customer":        params["customer"],
		"description":     params["description"],
		"invoice":         params["invoice"],
		"source":          source,
		"card":            source,
		"dispute":         nil,
		"fraud_details":   Record{},
		"metadata":        params["metadata"],
	}

	if fee, ok := intParam(params, "application_fee"); ok && fee > 0 {
		rec := s.store.Insert(collectionApplicationFees, "fee", Record{
			"object":          "application_fee",
			"amount":          fee,
			"amount_refunded": int64(0),
			"currency":        charge["currency"],
			"charge":          id,
			"account":         DefaultAccountID,
			"refunded":        false,
			"metadata":        Record{},
		})
		charge["application_fee"] = rec["id"]
	}

	return charge, nil
}

func renderCharge(s *Server, rec Record) Record {
	id, _ := rec["id"].(string)
	refunds := s.store.List(collectionRefunds, func(r Record) bool { return r["charge"] == id })
	rec["refunds"] = listRecord("/v1/charges/"+id+"/refunds", refunds, false)

	if disputeID, ok := rec["dispute"].(string); ok {
		if dispute, found := s.store.Get(collectionDisputes, disputeID); found {
			rec["dispute"] = dispute
		}
	}

	return rec
}

func (s *Server) writeCharge(w http.ResponseWriter, id string) {
	charge, ok := s.store.Get(collectionCharges, id)
	if !ok {
		writeError(w, notFound("charge", id))

		return
	}

	writeJSON(w, http.StatusOK, renderCharge(s, charge))
}

func (s *Server) captureCharge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	params, ok := s.parseOrFail(w, r)
	if !ok {
		return
	}

	var failure error

	_, found := s.store.Update(collectionCharges, id, func(rec Record) {
		if captured, _ := rec["captured"].(bool); captured {
			failure = invalidRequest(fmt.Sprintf("Charge %s has already been captured.", id), "")

			return
		}

		total, _ := rec["amount"].(int64)
		if amount, set := intParam(params, "amount"); set {
			if amount > total {
				failure = invalidRequest("Amount must be less than or equal to the authorized amount.", "amount")

				return
			}

			rec["amount_refunded"] = total - amount
		}

		rec["captured"] = true
	})

	switch {
	case !found:
		writeError(w, notFound("charge", id))
	case failure != nil:
		writeError(w, failure)
	default:
		s.writeCharge(w, id)
	}
}

func (s *Server) refundCharge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	params, ok := s.parseOrFail(w, r)
	if !ok {
		return
	}

	params["charge"] = id

	if _, err := s.build(s.kind(collectionRefunds), params); err != nil {
		writeError(w, err)

		return
	}

	s.writeCharge(w, id)
}

// buildRefund books the refund against its charge.
func buildRefund(s *Server, params map[string]interface{}) (Record, error) {
	chargeID := stringParam(params, "charge")
	if chargeID == "" {
		return nil, missingParam("charge")
	}

	var (
		failure  error
		refunded int64
		currency interface{}
	)

	_, found := s.store.Update(collectionCharges, chargeID, func(rec Record) {
		total, _ := rec["amount"].(int64)
		already, _ := rec["amount_refunded"].(int64)
		remaining := total - already

		amount, set := intParam(params, "amount")
		if !set {
			amount = remaining
		}

		if remaining == 0 {
			failure = invalidRequest(fmt.Sprintf("Charge %s has already been refunded.", chargeID), "")

			return
		}

		if amount <= 0 || amount > remaining {
			failure = invalidRequest(
				fmt.Sprintf("Refund amount (%d) is greater than unrefunded amount on charge (%d)", amount, remaining),
				"amount")

			return
		}

		rec["amount_refunded"] = already + amount
		rec["refunded"] = already+amount == total
		refunded = amount
		currency = rec["currency"]
	})

	if !found {
		return nil, invalidRequest("No such charge: "+chargeID, "charge")
	}

	if failure != nil {
		return nil, failure
	}

	return Record{
		"amount":              refunded,
		"currency":            currency,
		"charge":              chargeID,
		"reason":              params["reason"],
		"balance_transaction": NewID("txn"),
		"metadata":            params["metadata"],
	}, nil
}

// disputeFor returns the id of the dispute on charge, opening one if there is
// none yet.
func (s *Server) disputeFor(chargeID string) (string, bool) {
	charge, ok := s.store.Get(collectionCharges, chargeID)
	if !ok {
		return "", false
	}

	if id := refID(charge["dispute"]); id != "" {
		return id, true
	}

	dispute := s.store.Insert(collectionDisputes, "dp", Record{
		"object":   "dispute",
		"charge":   chargeID,
		"amount":   charge["amount"],
		"currency": charge["currency"],
		"status":   "needs_response",
		"reason":   "general",
		"evidence": nil,
		"metadata": Record{},
	})

	id, _ := dispute["id"].(string)
	s.store.Update(collectionCharges, chargeID, func(rec Record) { rec["dispute"] = id })

	return id, true
}

func (s *Server) updateChargeDispute(w http.ResponseWriter, r *http.Request) {
	chargeID := chi.URLParam(r, "id")

	params, ok := s.parseOrFail(w, r)
	if !ok {
		return
	}

	disputeID, found := s.disputeFor(chargeID)
	if !found {
		writeError(w, notFound("charge", chargeID))

		return
	}

	dispute, _ := s.store.Update(collectionDisputes, disputeID, func(rec Record) {
		applyUpdate(rec, params)

		if rec["status"] == "needs_response" {
			rec["status"] = "under_review"
		}
	})

	writeJSON(w, http.StatusOK, dispute)
}

func (s *Server) closeChargeDispute(w http.ResponseWriter, r *http.Request) {
	chargeID := chi.URLParam(r, "id")

	charge, ok := s.store.Get(collectionCharges, chargeID)
	if !ok {
		writeError(w, notFound("charge", chargeID))

		return
	}

	disputeID := refID(charge["dispute"])
	if disputeID == "" {
		writeError(w, invalidRequest(fmt.Sprintf("Charge %s has no dispute.", chargeID), ""))

		return
	}

	s.writeClosedDispute(w, disputeID)
}

func (s *Server) closeDispute(w http.ResponseWriter, r *http.Request) {
	s.writeClosedDispute(w, chi.URLParam(r, "id"))
}

func (s *Server) writeClosedDispute(w http.ResponseWriter, id string) {
	dispute, ok := s.store.Update(collectionDisputes, id, func(rec Record) {
		rec["status"] = "lost"
	})
	if !ok {
		writeError(w, notFound("dispute", id))

		return
	}

	s.emit("charge.dispute.closed", dispute)
	writeJSON(w, http.StatusOK, dispute)
}

// getBalance sums captured charges per currency.
func (s *Server) getBalance(w http.ResponseWriter, _ *http.Request) {
	totals := map[string]int64{}

	for _, charge := range s.store.List(collectionCharges, nil) {
		if captured, _ := charge["captured"].(bool); !captured {
			continue
		}

		currency, _ := charge["currency"].(string)
		amount, _ := charge["amount"].(int64)
		refunded, _ := charge["amount_refunded"].(int64)
		totals[currency] += amount - refunded
	}

	if len(totals) == 0 {
		totals["usd"] = 0
	}

	currencies := make([]string, 0, len(totals))
	for currency := range totals {
		currencies = append(currencies, currency)
	}

	sort.Strings(currencies)

	available := make([]interface{}, 0, len(currencies))
	pending := make([]interface{}, 0, len(currencies))

	for _, currency := range currencies {
		available = append(available, Record{"amount": totals[currency], "currency": currency})
		pending = append(pending, Record{"amount": int64(0), "currency": currency})
	}

	writeJSON(w, http.StatusOK, Record{
		"object":    "balance",
		"livemode":  false,
		"available": available,
		"pending":   pending,
	})
}

func buildCoupon(_ *Server, params map[string]interface{}) (Record, error) {
	duration := stringParam(params, "duration")
	if duration == "" {
		return nil, missingParam("duration")
	}

	_, hasPercent := intParam(params, "percent_off")
	_, hasAmount := intParam(params, "amount_off")

	if hasPercent == hasAmount {
		return nil, invalidRequest("Exactly one of percent_off or amount_off is required.", "percent_off")
	}

	if duration == "repeating" && params["duration_in_months"] == nil {
		return nil, missingParam("duration_in_months")
	}

	rec := Record(params)
	rec["valid"] = true
	rec["times_redeemed"] = int64(0)
	rec["livemode"] = false

	return rec, nil
}

func buildPlan(_ *Server, params map[string]interface{}) (Record, error) {
	for _, required := range []string{"amount", "currency", "interval", "name"} {
		if params[required] == nil {
			return nil, missingParam(required)
		}
	}

	rec := Record(params)
	if rec["interval_count"] == nil {
		rec["interval_count"] = int64(1)
	}

	rec["livemode"] = false

	return rec, nil
}

func now() int64 {
	return time.Now().Unix()
}
