package types

import "strings"

// Address is the shipping/billing value object stored as JSONB on orders.
// Serialization happens only at the persistence boundary (gorm json serializer).
type Address struct {
	Name       string  `json:"name"`
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city"`
	State      string  `json:"state,omitempty"`
	PostalCode string  `json:"postal_code,omitempty"`
	Country    string  `json:"country"`
	Phone      string  `json:"phone,omitempty"`
}

// Validate returns the first missing required field name, or "" when complete.
func (a Address) Validate() string {
	switch {
	case strings.TrimSpace(a.Line1) == "":
		return "line1"
	case strings.TrimSpace(a.City) == "":
		return "city"
	case strings.TrimSpace(a.Country) == "":
		return "country"
	}
	return ""
}
