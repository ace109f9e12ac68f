package report

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ftgifting/backoffice/internal/documents"
	"github.com/ftgifting/backoffice/internal/profiles"
)

func layoutDoc() *documents.Document {
	created := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	return &documents.Document{
		ID:                 uuid.New(),
		Kind:               documents.KindInvoice,
		CustomID:           "FTIN0042",
		Status:             documents.StatusPending,
		Currency:           "USD",
		ClientName:         "Golden Sands Hospitality",
		ClientEmail:        "purchasing@goldensands.example",
		ClientAddress:      documents.Address{Street: "Sheikh Zayed Road", City: "Dubai", Country: "United Arab Emirates"},
		ClientHasVAT:       true,
		TermsAndConditions: "Payment within 30 days.",
		Items: []documents.LineItem{
			{Name: "Gift hamper", Quantity: 100, Price: 12.5, VAT: 62.5, Total: 1250},
		},
		Subtotal:   1250,
		TotalVAT:   62.5,
		GrandTotal: 1312.5,
		CreatedAt:  created,
		PaymentDue: created.AddDate(0, 0, 30),
	}
}

func TestFormatAmount(t *testing.T) {
	require.Equal(t, "0.00", FormatAmount(0))
	require.Equal(t, "26.25", FormatAmount(26.25))
	require.Equal(t, "1,250.00", FormatAmount(1250))
	require.Equal(t, "1,312.50", FormatAmount(1312.5))
}

func TestBuildHTML(t *testing.T) {
	profile := profiles.CompanyProfile{
		Name:    "FT Gifting Trading Co. LLC",
		Address: "Office 1204, Marina Plaza",
		City:    "Dubai",
		Country: "United Arab Emirates",
		TRN:     "100000000000003",
	}

	html, err := BuildHTML(layoutDoc(), profile, "data:image/png;base64,AAAA")
	require.NoError(t, err)
	require.Contains(t, html, "Invoice FTIN0042")
	require.Contains(t, html, "FT Gifting Trading Co. LLC")
	require.Contains(t, html, "TRN: 100000000000003")
	require.Contains(t, html, "Golden Sands Hospitality")
	require.Contains(t, html, "data:image/png;base64,AAAA")
	require.Contains(t, html, "Gift hamper")
	require.Contains(t, html, "USD 1,312.50")
	// VAT-liable clients get the VAT column and line.
	require.Contains(t, html, "VAT")
	require.Contains(t, html, "USD 62.50")
	require.Contains(t, html, "Issued 14 Mar 2026")
	require.Contains(t, html, "Due 13 Apr 2026")
}

func TestBuildHTMLWithoutVAT(t *testing.T) {
	doc := layoutDoc()
	doc.ClientHasVAT = false
	doc.TotalVAT = 0
	doc.GrandTotal = 1250

	html, err := BuildHTML(doc, profiles.DefaultProfile, "")
	require.NoError(t, err)
	require.NotContains(t, html, ">VAT<")
	require.NotContains(t, html, "<img")
}

func TestBuildHTMLDeterministic(t *testing.T) {
	doc := layoutDoc()
	a, err := BuildHTML(doc, profiles.DefaultProfile, "")
	require.NoError(t, err)
	b, err := BuildHTML(doc, profiles.DefaultProfile, "")
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestFileName(t *testing.T) {
	require.Equal(t, "Invoice-FTIN0042.pdf", FileName(layoutDoc()))
}
