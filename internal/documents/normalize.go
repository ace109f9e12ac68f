package documents

// Store-boundary defaults. Every repository read passes through Normalize so
// downstream consumers never observe a zero currency, status, or nil items.
const (
	DefaultCurrency = "USD"
	DefaultStatus   = StatusPending
)

// Normalize fills defaults for fields absent in a stored record and recomputes
// the monetary aggregates from items. It is the single place where
// "missing field, use default" happens.
func Normalize(d *Document) {
	if d == nil {
		return
	}
	if d.Currency == "" {
		d.Currency = DefaultCurrency
	}
	if d.Status == "" {
		d.Status = DefaultStatus
	}
	if d.Items == nil {
		d.Items = []LineItem{}
	}
	if d.PaymentTerms == 0 {
		d.PaymentTerms = DefaultPaymentTerms
	}
	if d.PaymentDue.IsZero() && !d.CreatedAt.IsZero() {
		d.PaymentDue = d.CreatedAt.AddDate(0, 0, d.PaymentTerms)
	}
	d.Subtotal, d.TotalVAT, d.GrandTotal = ComputeTotals(d.Items, d.ClientHasVAT)
}
