package stripe

func standardPath(o *Object, kind string) (string, error) {
	return InstancePathFor(ClassPath(kind), o.id)
}

// Account is a Stripe account. Without an id it addresses the account that
// owns the API key.
type Account struct{ Object }

// NewAccount returns an Account with the given id.
func NewAccount(id string) *Account {
	a := &Account{}
	a.init(id, KindAccount)

	return a
}

// InstancePath implements Resource.
func (a *Account) InstancePath() (string, error) {
	if a.id == "" {
		return apiPrefix + "/account", nil
	}

	return standardPath(&a.Object, KindAccount)
}

// Balance is the singleton balance of the account.
type Balance struct{ Object }

// NewBalance returns an empty Balance.
func NewBalance() *Balance {
	b := &Balance{}
	b.init("", KindBalance)

	return b
}

// InstancePath implements Resource.
func (b *Balance) InstancePath() (string, error) {
	return ClassPath(KindBalance), nil
}

// Card is a payment card attached to a customer, recipient or account.
type Card struct{ Object }

// NewCard returns a Card with the given id.
func NewCard(id string) *Card {
	c := &Card{}
	c.init(id, KindCard)

	return c
}

// InstancePath implements Resource.
func (c *Card) InstancePath() (string, error) {
	switch {
	case c.GetID("customer") != "":
		return nestedPath(ClassPath(KindCustomer), c.GetID("customer"), "sources", c.id)
	case c.GetID("recipient") != "":
		return nestedPath(ClassPath(KindRecipient), c.GetID("recipient"), "cards", c.id)
	case c.GetID("account") != "":
		return nestedPath(ClassPath(KindAccount), c.GetID("account"), "external_accounts", c.id)
	default:
		return "", missingParent(&c.Object, "customer, recipient or account")
	}
}

// BankAccount is a bank account attached to a customer or account.
type BankAccount struct{ Object }

// NewBankAccount returns a BankAccount with the given id.
func NewBankAccount(id string) *BankAccount {
	b := &BankAccount{}
	b.init(id, KindBankAccount)

	return b
}

// InstancePath implements Resource.
func (b *BankAccount) InstancePath() (string, error) {
	switch {
	case b.GetID("customer") != "":
		return nestedPath(ClassPath(KindCustomer), b.GetID("customer"), "sources", b.id)
	case b.GetID("account") != "":
		return nestedPath(ClassPath(KindAccount), b.GetID("account"), "external_accounts", b.id)
	default:
		return "", missingParent(&b.Object, "customer or account")
	}
}

// Charge is a payment.
type Charge struct{ Object }

// NewCharge returns a Charge with the given id.
func NewCharge(id string) *Charge {
	c := &Charge{}
	c.init(id, KindCharge)

	return c
}

// InstancePath implements Resource.
func (c *Charge) InstancePath() (string, error) { return standardPath(&c.Object, KindCharge) }

// Amount returns the charge amount in the smallest currency unit.
func (c *Charge) Amount() int64 { return c.GetInt64("amount") }

// Currency returns the three-letter currency code.
func (c *Charge) Currency() string { return c.GetString("currency") }

// Paid reports whether the charge succeeded.
func (c *Charge) Paid() bool { return c.GetBool("paid") }

// Captured reports whether the charge was captured.
func (c *Charge) Captured() bool { return c.GetBool("captured") }

// Refunded reports whether the charge was fully refunded.
func (c *Charge) Refunded() bool { return c.GetBool("refunded") }

// Dispute returns the dispute attached to the charge, if any.
func (c *Charge) Dispute() *Dispute {
	d, _ := c.values["dispute"].(*Dispute)

	return d
}

// Dispute is a chargeback raised against a charge.
type Dispute struct{ Object }

// NewDispute returns a Dispute with the given id.
func NewDispute(id string) *Dispute {
	d := &Dispute{}
	d.init(id, KindDispute)

	return d
}

// InstancePath implements Resource.
func (d *Dispute) InstancePath() (string, error) { return standardPath(&d.Object, KindDispute) }

// Customer is a customer record.
type Customer struct{ Object }

// NewCustomer returns a Customer with the given id.
func NewCustomer(id string) *Customer {
	c := &Customer{}
	c.init(id, KindCustomer)

	return c
}

// InstancePath implements Resource.
func (c *Customer) InstancePath() (string, error) { return standardPath(&c.Object, KindCustomer) }

// Email returns the customer's email address.
func (c *Customer) Email() string { return c.GetString("email") }

// Description returns the customer's description.
func (c *Customer) Description() string { return c.GetString("description") }

// Deleted reports whether the API confirmed the deletion.
func (c *Customer) Deleted() bool { return c.GetBool("deleted") }

// Subscription returns the legacy single subscription field, if set.
func (c *Customer) Subscription() *Subscription {
	s, _ := c.values["subscription"].(*Subscription)

	return s
}

// Subscriptions returns the embedded subscription list, if expanded.
func (c *Customer) Subscriptions() []*Subscription {
	return Items[*Subscription](c.GetList("subscriptions"))
}

// Invoice is a statement of amounts owed by a customer.
type Invoice struct{ Object }

// NewInvoice returns an Invoice with the given id.
func NewInvoice(id string) *Invoice {
	i := &Invoice{}
	i.init(id, KindInvoice)

	return i
}

// InstancePath implements Resource.
func (i *Invoice) InstancePath() (string, error) { return standardPath(&i.Object, KindInvoice) }

// InvoiceItem is a line item added to a customer's next invoice.
type InvoiceItem struct{ Object }

// NewInvoiceItem returns an InvoiceItem with the given id.
func NewInvoiceItem(id string) *InvoiceItem {
	i := &InvoiceItem{}
	i.init(id, KindInvoiceItem)

	return i
}

// InstancePath implements Resource.
func (i *InvoiceItem) InstancePath() (string, error) {
	return standardPath(&i.Object, KindInvoiceItem)
}

// Plan is a recurring price.
type Plan struct{ Object }

// NewPlan returns a Plan with the given id.
func NewPlan(id string) *Plan {
	p := &Plan{}
	p.init(id, KindPlan)

	return p
}

// InstancePath implements Resource.
func (p *Plan) InstancePath() (string, error) { return standardPath(&p.Object, KindPlan) }

// Subscription ties a customer to a plan. It is addressed through its
// customer.
type Subscription struct{ Object }

// NewSubscription returns a Subscription with the given id.
func NewSubscription(id string) *Subscription {
	s := &Subscription{}
	s.init(id, KindSubscription)

	return s
}

// InstancePath implements Resource.
func (s *Subscription) InstancePath() (string, error) {
	customer := s.GetID("customer")
	if customer == "" {
		return "", missingParent(&s.Object, "customer")
	}

	return nestedPath(ClassPath(KindCustomer), customer, "subscriptions", s.id)
}

// Plan returns the subscribed plan, if present.
func (s *Subscription) Plan() *Plan {
	p, _ := s.values["plan"].(*Plan)

	return p
}

// Refund returns money from a charge.
type Refund struct{ Object }

// NewRefund returns a Refund with the given id.
func NewRefund(id string) *Refund {
	r := &Refund{}
	r.init(id, KindRefund)

	return r
}

// InstancePath implements Resource.
func (r *Refund) InstancePath() (string, error) { return standardPath(&r.Object, KindRefund) }

// Token is a single-use token for card or bank details.
type Token struct{ Object }

// NewToken returns a Token with the given id.
func NewToken(id string) *Token {
	t := &Token{}
	t.init(id, KindToken)

	return t
}

// InstancePath implements Resource.
func (t *Token) InstancePath() (string, error) { return standardPath(&t.Object, KindToken) }

// Coupon is a discount applicable to customers.
type Coupon struct{ Object }

// NewCoupon returns a Coupon with the given id.
func NewCoupon(id string) *Coupon {
	c := &Coupon{}
	c.init(id, KindCoupon)

	return c
}

// InstancePath implements Resource.
func (c *Coupon) InstancePath() (string, error) { return standardPath(&c.Object, KindCoupon) }

// Event records a change on the account.
type Event struct{ Object }

// NewEvent returns an Event with the given id.
func NewEvent(id string) *Event {
	e := &Event{}
	e.init(id, KindEvent)

	return e
}

// InstancePath implements Resource.
func (e *Event) InstancePath() (string, error) { return standardPath(&e.Object, KindEvent) }

// Type returns the event type, e.g. "customer.created".
func (e *Event) Type() string { return e.GetString("type") }

// Transfer moves funds to a recipient or connected account.
type Transfer struct{ Object }

// NewTransfer returns a Transfer with the given id.
func NewTransfer(id string) *Transfer {
	t := &Transfer{}
	t.init(id, KindTransfer)

	return t
}

// InstancePath implements Resource.
func (t *Transfer) InstancePath() (string, error) { return standardPath(&t.Object, KindTransfer) }

// Reversal undoes part of a transfer. It is addressed through its transfer.
type Reversal struct{ Object }

// NewReversal returns a Reversal with the given id.
func NewReversal(id string) *Reversal {
	r := &Reversal{}
	r.init(id, KindReversal)

	return r
}

// InstancePath implements Resource.
func (r *Reversal) InstancePath() (string, error) {
	transfer := r.GetID("transfer")
	if transfer == "" {
		return "", missingParent(&r.Object, "transfer")
	}

	return nestedPath(ClassPath(KindTransfer), transfer, "reversals", r.id)
}

// Recipient is a legacy transfer recipient.
type Recipient struct{ Object }

// NewRecipient returns a Recipient with the given id.
func NewRecipient(id string) *Recipient {
	r := &Recipient{}
	r.init(id, KindRecipient)

	return r
}

// InstancePath implements Resource.
func (r *Recipient) InstancePath() (string, error) { return standardPath(&r.Object, KindRecipient) }

// FileUpload is a file stored with the API.
type FileUpload struct{ Object }

// NewFileUpload returns a FileUpload with the given id.
func NewFileUpload(id string) *FileUpload {
	f := &FileUpload{}
	f.init(id, KindFileUpload)

	return f
}

// InstancePath implements Resource.
func (f *FileUpload) InstancePath() (string, error) {
	return standardPath(&f.Object, KindFileUpload)
}

// ApplicationFee is a fee collected by a platform on a connected charge.
type ApplicationFee struct{ Object }

// NewApplicationFee returns an ApplicationFee with the given id.
func NewApplicationFee(id string) *ApplicationFee {
	a := &ApplicationFee{}
	a.init(id, KindApplicationFee)

	return a
}

// InstancePath implements Resource.
func (a *ApplicationFee) InstancePath() (string, error) {
	return standardPath(&a.Object, KindApplicationFee)
}

// ApplicationFeeRefund refunds an application fee. It is addressed through
// its fee.
type ApplicationFeeRefund struct{ Object }

// NewApplicationFeeRefund returns an ApplicationFeeRefund with the given id.
func NewApplicationFeeRefund(id string) *ApplicationFeeRefund {
	a := &ApplicationFeeRefund{}
	a.init(id, KindApplicationFeeRefund)

	return a
}

// InstancePath implements Resource.
func (a *ApplicationFeeRefund) InstancePath() (string, error) {
	fee := a.GetID("fee")
	if fee == "" {
		return "", missingParent(&a.Object, "fee")
	}

	return nestedPath(ClassPath(KindApplicationFee), fee, "refunds", a.id)
}

// BitcoinReceiver accepts a bitcoin payment.
type BitcoinReceiver struct{ Object }

// NewBitcoinReceiver returns a BitcoinReceiver with the given id.
func NewBitcoinReceiver(id string) *BitcoinReceiver {
	b := &BitcoinReceiver{}
	b.init(id, KindBitcoinReceiver)

	return b
}

// InstancePath implements Resource.
func (b *BitcoinReceiver) InstancePath() (string, error) {
	return standardPath(&b.Object, KindBitcoinReceiver)
}

// BitcoinTransaction is a payment received by a BitcoinReceiver.
type BitcoinTransaction struct{ Object }

// NewBitcoinTransaction returns a BitcoinTransaction with the given id.
func NewBitcoinTransaction(id string) *BitcoinTransaction {
	b := &BitcoinTransaction{}
	b.init(id, KindBitcoinTransaction)

	return b
}

// InstancePath implements Resource.
func (b *BitcoinTransaction) InstancePath() (string, error) {
	return standardPath(&b.Object, KindBitcoinTransaction)
}
