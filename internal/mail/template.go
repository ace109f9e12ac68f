package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// TemplateParams are the named values substituted into the message body.
type TemplateParams struct {
	ClientName string
	DocLabel   string
	CustomID   string
	Amount     string
	Currency   string
	DueDate    time.Time
}

var bodyTemplate = template.Must(template.New("body").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Helvetica, Arial, sans-serif; color: #1a1a1a;">
  <p>Dear {{.ClientName}},</p>
  <p>Please find attached {{.DocLabel}} <strong>{{.CustomID}}</strong>
  for <strong>{{.Currency}} {{.Amount}}</strong>{{if not .DueDate.IsZero}},
  due on {{.DueDate.Format "2 Jan 2006"}}{{end}}.</p>
  <p>If you have any questions about this document, just reply to this email.</p>
  <p>Kind regards,<br>FT Gifting Trading Co.</p>
</body>
</html>`))

// BuildBody renders the templated HTML body for a document email.
func BuildBody(params TemplateParams) (subject, html string, err error) {
	var buf bytes.Buffer
	if err := bodyTemplate.Execute(&buf, params); err != nil {
		return "", "", fmt.Errorf("mail: execute body template: %w", err)
	}
	subject = fmt.Sprintf("%s %s from FT Gifting", params.DocLabel, params.CustomID)
	return subject, buf.String(), nil
}
