package clients

// UpsertClientRequest is the payload for creating or replacing a client.
type UpsertClientRequest struct {
	CompanyName string `json:"companyName" validate:"required,max=200"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	Address     string `json:"address,omitempty" validate:"max=500"`
	City        string `json:"city,omitempty" validate:"max=100"`
	PostCode    string `json:"postCode,omitempty" validate:"max=20"`
	Country     string `json:"country,omitempty" validate:"max=100"`
	TRN         string `json:"trn,omitempty" validate:"max=30"`
}
