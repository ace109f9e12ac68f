package clients

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client is an independently owned customer record. Documents copy it by
// value at creation time and never sync back.
type Client struct {
	ID          uuid.UUID `json:"id"`
	CompanyName string    `json:"companyName"`
	Email       string    `json:"email,omitempty"`
	Address     string    `json:"address,omitempty"`
	City        string    `json:"city,omitempty"`
	PostCode    string    `json:"postCode,omitempty"`
	Country     string    `json:"country,omitempty"`
	HasVAT      bool      `json:"hasVat"`
	TRN         string    `json:"trn,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// HasVAT reports whether a client country is VAT-liable. VAT applies only to
// UAE clients; the match is a case-insensitive substring check so both "UAE"
// and "United Arab Emirates" qualify.
func HasVAT(country string) bool {
	c := strings.ToLower(country)
	return strings.Contains(c, "uae") || strings.Contains(c, "emirates")
}
