package report

import (
	"bytes"
	"fmt"
	"html/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ftgifting/backoffice/internal/documents"
	"github.com/ftgifting/backoffice/internal/profiles"
)

var money = message.NewPrinter(language.English)

// FormatAmount renders a monetary value with thousands grouping, e.g. "1,250.00".
func FormatAmount(v float64) string {
	return money.Sprintf("%.2f", v)
}

type layoutItem struct {
	Name        string
	Description string
	Quantity    string
	Price       string
	VAT         string
	Total       string
}

type layoutData struct {
	Title       string
	DocLabel    string
	CustomID    string
	IssuedOn    string
	DueOn       string
	Currency    string
	Profile     profiles.CompanyProfile
	LogoURL     template.URL
	ClientName  string
	ClientEmail string
	Address     documents.Address
	ShowVAT     bool
	Items       []layoutItem
	Subtotal    string
	TotalVAT    string
	GrandTotal  string
	Terms       string
	Description string
}

var documentTemplate = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { font-family: Helvetica, Arial, sans-serif; font-size: 12px; color: #1a1a1a; margin: 0; }
  .header { display: flex; justify-content: space-between; border-bottom: 2px solid #333; padding-bottom: 12px; }
  .header img { max-height: 64px; }
  .company { text-align: right; font-size: 11px; }
  h1 { font-size: 20px; margin: 18px 0 2px 0; }
  .meta { color: #555; margin-bottom: 18px; }
  .billto { margin-bottom: 18px; }
  .billto .label { font-size: 10px; text-transform: uppercase; color: #888; }
  table.items { width: 100%; border-collapse: collapse; margin-bottom: 16px; }
  table.items th { text-align: left; font-size: 10px; text-transform: uppercase; color: #888; border-bottom: 1px solid #ccc; padding: 6px 4px; }
  table.items td { padding: 6px 4px; border-bottom: 1px solid #eee; }
  td.num, th.num { text-align: right; }
  .totals { width: 280px; margin-left: auto; }
  .totals td { padding: 4px; }
  .totals .grand { font-weight: bold; border-top: 1px solid #333; }
  .terms { margin-top: 24px; font-size: 11px; color: #444; }
  .terms .label { font-size: 10px; text-transform: uppercase; color: #888; }
  .signature { margin-top: 48px; display: flex; justify-content: space-between; }
  .signature .line { border-top: 1px solid #333; width: 200px; padding-top: 4px; font-size: 10px; color: #888; }
</style>
</head>
<body>
  <div class="header">
    <div>{{if .LogoURL}}<img src="{{.LogoURL}}" alt="logo">{{end}}</div>
    <div class="company">
      <strong>{{.Profile.Name}}</strong><br>
      {{.Profile.Address}}{{if .Profile.City}}, {{.Profile.City}}{{end}}<br>
      {{.Profile.Country}}<br>
      {{if .Profile.Phone}}{{.Profile.Phone}}<br>{{end}}
      {{if .Profile.Email}}{{.Profile.Email}}<br>{{end}}
      {{if .Profile.TRN}}TRN: {{.Profile.TRN}}{{end}}
    </div>
  </div>

  <h1>{{.DocLabel}} {{.CustomID}}</h1>
  <div class="meta">Issued {{.IssuedOn}} &middot; Due {{.DueOn}}</div>

  <div class="billto">
    <div class="label">Bill To</div>
    <strong>{{.ClientName}}</strong><br>
    {{if .ClientEmail}}{{.ClientEmail}}<br>{{end}}
    {{if .Address.Street}}{{.Address.Street}}<br>{{end}}
    {{if .Address.City}}{{.Address.City}}{{if .Address.PostCode}} {{.Address.PostCode}}{{end}}<br>{{end}}
    {{if .Address.Country}}{{.Address.Country}}{{end}}
  </div>

  {{if .Description}}<p>{{.Description}}</p>{{end}}

  <table class="items">
    <tr>
      <th>Item</th>
      <th class="num">Qty</th>
      <th class="num">Price ({{.Currency}})</th>
      {{if .ShowVAT}}<th class="num">VAT</th>{{end}}
      <th class="num">Total</th>
    </tr>
    {{range .Items}}
    <tr>
      <td>{{.Name}}{{if .Description}}<br><small>{{.Description}}</small>{{end}}</td>
      <td class="num">{{.Quantity}}</td>
      <td class="num">{{.Price}}</td>
      {{if $.ShowVAT}}<td class="num">{{.VAT}}</td>{{end}}
      <td class="num">{{.Total}}</td>
    </tr>
    {{end}}
  </table>

  <table class="totals">
    <tr><td>Subtotal</td><td class="num">{{.Currency}} {{.Subtotal}}</td></tr>
    {{if .ShowVAT}}<tr><td>VAT</td><td class="num">{{.Currency}} {{.TotalVAT}}</td></tr>{{end}}
    <tr class="grand"><td>Total Due</td><td class="num">{{.Currency}} {{.GrandTotal}}</td></tr>
  </table>

  {{if .Terms}}
  <div class="terms">
    <div class="label">Terms &amp; Conditions</div>
    {{.Terms}}
  </div>
  {{end}}

  <div class="signature">
    <div class="line">Authorised Signature</div>
    <div class="line">Received By</div>
  </div>
</body>
</html>`))

// BuildHTML lays out a document against the resolved company profile. The
// result is deterministic for fixed inputs.
func BuildHTML(doc *documents.Document, profile profiles.CompanyProfile, logoDataURL string) (string, error) {
	data := layoutData{
		Title:       fmt.Sprintf("%s %s", doc.Kind.Label(), doc.CustomID),
		DocLabel:    doc.Kind.Label(),
		CustomID:    doc.CustomID,
		IssuedOn:    doc.CreatedAt.Format("2 Jan 2006"),
		DueOn:       doc.PaymentDue.Format("2 Jan 2006"),
		Currency:    doc.Currency,
		Profile:     profile,
		LogoURL:     template.URL(logoDataURL),
		ClientName:  doc.ClientName,
		ClientEmail: doc.ClientEmail,
		Address:     doc.ClientAddress,
		ShowVAT:     doc.ClientHasVAT,
		Subtotal:    FormatAmount(doc.Subtotal),
		TotalVAT:    FormatAmount(doc.TotalVAT),
		GrandTotal:  FormatAmount(doc.GrandTotal),
		Terms:       doc.TermsAndConditions,
		Description: doc.Description,
	}
	for _, item := range doc.Items {
		data.Items = append(data.Items, layoutItem{
			Name:        item.Name,
			Description: item.Description,
			Quantity:    money.Sprintf("%v", item.Quantity),
			Price:       FormatAmount(item.Price),
			VAT:         FormatAmount(item.VAT),
			Total:       FormatAmount(item.Total),
		})
	}

	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute document template: %w", err)
	}
	return buf.String(), nil
}

// FileName is the attachment/download name for a rendered document.
func FileName(doc *documents.Document) string {
	return fmt.Sprintf("%s-%s.pdf", doc.Kind.Label(), doc.CustomID)
}
