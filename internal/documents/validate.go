package documents

import (
	"math"
	"regexp"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// ValidationResult carries per-field errors for inline highlighting plus a
// de-duplicated list of human-readable messages.
type ValidationResult struct {
	IsError     bool              `json:"isError"`
	FieldErrors map[string]string `json:"fieldErrors"`
	Messages    []string          `json:"messages"`
}

func (r *ValidationResult) add(field, message string) {
	r.IsError = true
	if _, exists := r.FieldErrors[field]; !exists {
		r.FieldErrors[field] = message
	}
	for _, m := range r.Messages {
		if m == message {
			return
		}
	}
	r.Messages = append(r.Messages, message)
}

// Validate checks a document and its items before a state transition. It never
// mutates its inputs and performs no I/O.
//
// In draft mode only the client name is required. In full-submission mode the
// description, terms, client address, and a non-empty item list with named,
// numeric items are required as well.
func Validate(doc Document, isDraft bool) ValidationResult {
	res := ValidationResult{FieldErrors: map[string]string{}}

	if doc.ClientName == "" {
		res.add("clientName", "client name is required")
	}
	if isDraft {
		return res
	}

	if doc.Description == "" {
		res.add("description", "description is required")
	}
	if doc.TermsAndConditions == "" {
		res.add("termsAndConditions", "terms and conditions are required")
	}
	if doc.ClientEmail != "" && !emailPattern.MatchString(doc.ClientEmail) {
		res.add("clientEmail", "client email is not a valid email address")
	}
	if doc.ClientAddress.Street == "" {
		res.add("clientAddress.street", "client street address is required")
	}
	if doc.ClientAddress.Country == "" {
		res.add("clientAddress.country", "client country is required")
	}

	if len(doc.Items) == 0 {
		res.add("items", "at least one item is required")
		return res
	}
	for _, item := range doc.Items {
		if item.Name == "" {
			res.add("items.name", "every item needs a name")
		}
		if math.IsNaN(item.Quantity) {
			res.add("items.quantity", "item quantity must be a number")
		}
		if math.IsNaN(item.Price) {
			res.add("items.price", "item price must be a number")
		}
	}
	return res
}
