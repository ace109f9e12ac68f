package documents

import (
	"time"

	"github.com/google/uuid"
)

// Kind identifies a document collection.
type Kind string

const (
	KindInvoice       Kind = "invoice"
	KindQuotation     Kind = "quotation"
	KindPurchaseOrder Kind = "purchaseOrder"
	KindInternalPO    Kind = "internalPO"
	KindDeliveryOrder Kind = "deliveryOrder"
	KindReceipt       Kind = "receipt"
)

// Kinds lists every document kind the service manages.
var Kinds = []Kind{
	KindInvoice,
	KindQuotation,
	KindPurchaseOrder,
	KindInternalPO,
	KindDeliveryOrder,
	KindReceipt,
}

// ParseKind resolves a URL slug into a Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "invoices", string(KindInvoice):
		return KindInvoice, true
	case "quotations", string(KindQuotation):
		return KindQuotation, true
	case "purchase-orders", string(KindPurchaseOrder):
		return KindPurchaseOrder, true
	case "internal-pos", string(KindInternalPO):
		return KindInternalPO, true
	case "delivery-orders", string(KindDeliveryOrder):
		return KindDeliveryOrder, true
	case "receipts", string(KindReceipt):
		return KindReceipt, true
	}
	return "", false
}

// Label returns the human-readable name used in rendered documents and emails.
func (k Kind) Label() string {
	switch k {
	case KindInvoice:
		return "Invoice"
	case KindQuotation:
		return "Quotation"
	case KindPurchaseOrder:
		return "Purchase Order"
	case KindInternalPO:
		return "Internal Purchase Order"
	case KindDeliveryOrder:
		return "Delivery Order"
	case KindReceipt:
		return "Receipt"
	}
	return string(k)
}

// Status is a lifecycle state. Allowed values depend on the document kind.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusInvoiced  Status = "invoiced"
	StatusDelivered Status = "delivered"
	StatusVoid      Status = "void"
)

// transitions is the legal state machine per kind. A missing entry means the
// transition is rejected.
var transitions = map[Kind]map[Status][]Status{
	KindInvoice: {
		StatusDraft:   {StatusPending, StatusVoid},
		StatusPending: {StatusPaid, StatusVoid},
	},
	KindQuotation: {
		StatusDraft:    {StatusPending, StatusVoid},
		StatusPending:  {StatusApproved, StatusInvoiced, StatusVoid},
		StatusApproved: {StatusInvoiced, StatusVoid},
	},
	KindPurchaseOrder: {
		StatusDraft:   {StatusPending, StatusVoid},
		StatusPending: {StatusApproved, StatusRejected, StatusVoid},
	},
	KindInternalPO: {
		StatusDraft:   {StatusPending, StatusVoid},
		StatusPending: {StatusApproved, StatusRejected, StatusVoid},
	},
	KindDeliveryOrder: {
		StatusDraft:   {StatusPending, StatusVoid},
		StatusPending: {StatusDelivered, StatusVoid},
	},
	KindReceipt: {
		StatusDraft:   {StatusPending, StatusVoid},
		StatusPending: {StatusPaid, StatusVoid},
	},
}

// CanTransition reports whether kind allows moving from one status to another.
func CanTransition(kind Kind, from, to Status) bool {
	for _, allowed := range transitions[kind][from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Address is the postal address snapshot carried on a document.
type Address struct {
	Street   string `json:"street"`
	City     string `json:"city,omitempty"`
	PostCode string `json:"postCode,omitempty"`
	Country  string `json:"country"`
}

// LineItem is a single billable row. Total is quantity x price, VAT-exclusive.
type LineItem struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Quantity    float64 `json:"quantity"`
	Price       float64 `json:"price"`
	VAT         float64 `json:"vat"`
	Total       float64 `json:"total"`
}

// Document is the shape shared by every kind. Client fields are a snapshot
// taken at creation time and are never synced back to the client record.
type Document struct {
	ID                 uuid.UUID  `json:"id"`
	Kind               Kind       `json:"kind"`
	CustomID           string     `json:"customId"`
	Status             Status     `json:"status"`
	Currency           string     `json:"currency"`
	Description        string     `json:"description,omitempty"`
	TermsAndConditions string     `json:"termsAndConditions,omitempty"`
	ClientID           *uuid.UUID `json:"clientId,omitempty"`
	ClientName         string     `json:"clientName"`
	ClientEmail        string     `json:"clientEmail,omitempty"`
	ClientAddress      Address    `json:"clientAddress"`
	ClientHasVAT       bool       `json:"clientHasVat"`
	Items              []LineItem `json:"items"`
	Subtotal           float64    `json:"subtotal"`
	TotalVAT           float64    `json:"totalVat"`
	GrandTotal         float64    `json:"grandTotal"`
	PaymentTerms       int        `json:"paymentTerms"`
	CreatedAt          time.Time  `json:"createdAt"`
	PaymentDue         time.Time  `json:"paymentDue"`
	UpdatedAt          time.Time  `json:"updatedAt"`

	// One-way conversion link. A quotation holding ConvertedToInvoice is
	// immutable except via duplication.
	QuotationID        *uuid.UUID `json:"quotationId,omitempty"`
	ConvertedToInvoice *string    `json:"convertedToInvoice,omitempty"`
}

// Converted reports whether a quotation has already been turned into an invoice.
func (d *Document) Converted() bool {
	return d.ConvertedToInvoice != nil && *d.ConvertedToInvoice != ""
}

// ComputeTotals recomputes the derived aggregates from items. Item totals are
// normalised to quantity x price first so a persisted document can never
// disagree with its items. VAT sums to zero unless the client has VAT.
func ComputeTotals(items []LineItem, hasVAT bool) (subtotal, totalVAT, grandTotal float64) {
	for i := range items {
		items[i].Total = items[i].Quantity * items[i].Price
		subtotal += items[i].Total
		if hasVAT {
			totalVAT += items[i].VAT
		} else {
			items[i].VAT = 0
		}
	}
	grandTotal = subtotal + totalVAT
	return subtotal, totalVAT, grandTotal
}

// PaymentTermsDays are the selectable payment-terms presets.
var PaymentTermsDays = []int{7, 15, 30, 60}

// DefaultPaymentTerms is applied when a document does not specify terms.
const DefaultPaymentTerms = 30
