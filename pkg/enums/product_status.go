package enums

import "fmt"

// ProductStatus represents the catalog visibility state of a product.
type ProductStatus string

const (
	ProductStatusDraft      ProductStatus = "draft"
	ProductStatusActive     ProductStatus = "active"
	ProductStatusOutOfStock ProductStatus = "out_of_stock"
	ProductStatusArchived   ProductStatus = "archived"
)

var validProductStatuses = []ProductStatus{
	ProductStatusDraft,
	ProductStatusActive,
	ProductStatusOutOfStock,
	ProductStatusArchived,
}

// String implements fmt.Stringer.
func (p ProductStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductStatus.
func (p ProductStatus) IsValid() bool {
	for _, candidate := range validProductStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProductStatus converts raw input into a ProductStatus.
func ParseProductStatus(value string) (ProductStatus, error) {
	for _, candidate := range validProductStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product status %q", value)
}
