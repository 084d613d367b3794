package gateway

// Wire types for the payment gateway's order-creation API. Amounts are
// always integer minor units (cents); the gateway rejects fractional values.

// ChargeRequest is the envelope submitted to POST /orders on the gateway.
type ChargeRequest struct {
	Code     string         `json:"code"`
	Items    []ChargeItem   `json:"items"`
	Customer ChargeCustomer `json:"customer"`
	Payments []Payment      `json:"payments"`
}

// ChargeItem is one chargeable line
type ChargeItem struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
	Quantity    int    `json:"quantity"`
}

// ChargeCustomer identifies the buyer. Code carries our account id as the
// gateway's external customer reference.
type ChargeCustomer struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Document string `json:"document"`
	Phone    string `json:"phone,omitempty"`
}

// Payment method identifiers
const (
	MethodCreditCard = "credit_card"
	MethodDebitCard  = "debit_card"
)

// Payment selects the payment method for a charge
type Payment struct {
	PaymentMethod string `json:"payment_method"`
	CreditCard    *Card  `json:"credit_card,omitempty"`
	DebitCard     *Card  `json:"debit_card,omitempty"`
}

// Card carries the instrument details. It only ever lives in the outbound
// request body and is never persisted.
type Card struct {
	Number         string   `json:"number"`
	HolderName     string   `json:"holder_name"`
	HolderDocument string   `json:"holder_document"`
	ExpMonth       int      `json:"exp_month"`
	ExpYear        int      `json:"exp_year"`
	CVV            string   `json:"cvv"`
	BillingAddress *Address `json:"billing_address,omitempty"`
}

// Address is a billing address
type Address struct {
	Line1   string `json:"line_1"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

// ChargeResponse is the synchronous reply to a charge submission
type ChargeResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}
