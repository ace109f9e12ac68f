package profiles

import "strings"

// Region selects which company identity appears on rendered documents.
type Region string

const (
	RegionUAE           Region = "uae"
	RegionInternational Region = "intl"
)

// RegionForCountry resolves a client country into a region. The match is a
// case-insensitive substring check, so "UAE", "Dubai, U.A.E" spelled out, and
// "United Arab Emirates" all resolve to the UAE profile.
func RegionForCountry(country string) Region {
	c := strings.ToLower(country)
	if strings.Contains(c, "uae") || strings.Contains(c, "emirates") {
		return RegionUAE
	}
	return RegionInternational
}

// CompanyProfile is a fixed regional identity used to populate the header and
// footer of rendered documents.
type CompanyProfile struct {
	Region   Region `json:"region"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	City     string `json:"city,omitempty"`
	Country  string `json:"country"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	TRN      string `json:"trn,omitempty"`
	LogoPath string `json:"logoPath,omitempty"`
	BankInfo string `json:"bankInfo,omitempty"`
}

// DefaultProfile is the hardcoded fallback when the store lookup fails. It
// matches the non-UAE region.
var DefaultProfile = CompanyProfile{
	Region:  RegionInternational,
	Name:    "FT Gifting Trading Co.",
	Address: "12 Harbour Road",
	City:    "Singapore",
	Country: "Singapore",
	Email:   "accounts@ftgifting.example",
}
