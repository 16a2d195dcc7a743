package billing

// PaymentMethod is the safe card metadata the backend stores; full card data
// lives only with the payment provider.
type PaymentMethod struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	CardType    string `json:"card_type"`
	LastFour    string `json:"last_four"`
	ExpMonth    int    `json:"exp_month"`
	ExpYear     int    `json:"exp_year"`
	Expires     string `json:"expires"`
	IsDefault   bool   `json:"is_default"`
}

// Invoice statuses the billing endpoint reports.
const (
	InvoicePaid   = "paid"
	InvoiceDue    = "due"
	InvoiceFailed = "failed"
)

// Invoice is a read-only billing record.
type Invoice struct {
	ID     string  `json:"id"`
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
	Status string  `json:"status"`
}

// Plan describes the current subscription plan.
type Plan struct {
	Name         string  `json:"name"`
	PriceMonthly float64 `json:"price_monthly"`
	NextBilling  string  `json:"next_billing"`
}

// CardDetails is the raw card input collected from the user. It is handed to
// the Tokenizer only and never serialized toward the backend.
type CardDetails struct {
	Number   string
	ExpMonth int
	ExpYear  int
	CVC      string
}
