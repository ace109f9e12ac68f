package documents

import (
	"time"

	"github.com/google/uuid"
)

// SubmitMode selects how a submission is processed.
type SubmitMode string

const (
	// SubmitModeNew creates a fully validated document with status pending.
	SubmitModeNew SubmitMode = "new"
	// SubmitModeSave stores a draft; only draft-mode validation applies.
	SubmitModeSave SubmitMode = "save"
	// SubmitModeChange replaces an existing document, preserving its status,
	// creation time and business code.
	SubmitModeChange SubmitMode = "change"
)

// LineItemRequest is one submitted line. Totals are always recomputed
// server-side from quantity and price.
type LineItemRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Quantity    float64 `json:"quantity"`
	Price       float64 `json:"price"`
	VAT         float64 `json:"vat"`
}

// SubmitRequest is the payload for creating or replacing a document.
type SubmitRequest struct {
	ClientID           *uuid.UUID        `json:"clientId,omitempty"`
	ClientName         string            `json:"clientName"`
	ClientEmail        string            `json:"clientEmail,omitempty" validate:"omitempty,max=200"`
	ClientAddress      Address           `json:"clientAddress"`
	Description        string            `json:"description,omitempty" validate:"max=2000"`
	TermsAndConditions string            `json:"termsAndConditions,omitempty" validate:"max=5000"`
	Currency           string            `json:"currency,omitempty" validate:"omitempty,len=3"`
	PaymentTerms       int               `json:"paymentTerms,omitempty"`
	PaymentDue         *time.Time        `json:"paymentDue,omitempty"`
	Items              []LineItemRequest `json:"items" validate:"max=200"`
}

// OverviewEntry summarises one document kind for the dashboard.
type OverviewEntry struct {
	Kind        Kind           `json:"kind"`
	Label       string         `json:"label"`
	Counts      map[Status]int `json:"counts"`
	Outstanding float64        `json:"outstanding"`
}
