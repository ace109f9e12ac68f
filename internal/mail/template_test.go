package mail

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuildBody(t *testing.T) {
	subject, html, err := BuildBody(TemplateParams{
		ClientName: "Golden Sands Hospitality",
		DocLabel:   "Invoice",
		CustomID:   "FTIN0042",
		Amount:     "26.25",
		Currency:   "USD",
		DueDate:    time.Date(2026, 4, 13, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Equal(t, "Invoice FTIN0042 from FT Gifting", subject)
	require.Contains(t, html, "Dear Golden Sands Hospitality,")
	require.Contains(t, html, "FTIN0042")
	require.Contains(t, html, "USD 26.25")
	require.Contains(t, html, "due on 13 Apr 2026")
}

func TestBuildBodyWithoutDueDate(t *testing.T) {
	_, html, err := BuildBody(TemplateParams{
		ClientName: "Harbourview Events",
		DocLabel:   "Quotation",
		CustomID:   "FTQ0007",
		Amount:     "1,250.00",
		Currency:   "USD",
	})
	require.NoError(t, err)
	require.NotContains(t, html, "due on")
}

func TestBuildBodyEscapesClientName(t *testing.T) {
	_, html, err := BuildBody(TemplateParams{
		ClientName: "<script>alert(1)</script>",
		DocLabel:   "Invoice",
		CustomID:   "FTIN0001",
		Amount:     "1.00",
		Currency:   "USD",
	})
	require.NoError(t, err)
	require.NotContains(t, html, "<script>")
}
