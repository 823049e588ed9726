package enums

import "fmt"

// VendorTier is a vendor's commission bracket. Tiers are ordered: a higher
// ordinal means more cumulative delivered sales and a lower commission rate.
type VendorTier string

const (
	VendorTierBronze   VendorTier = "bronze"
	VendorTierSilver   VendorTier = "silver"
	VendorTierGold     VendorTier = "gold"
	VendorTierPlatinum VendorTier = "platinum"
	VendorTierDiamond  VendorTier = "diamond"
	VendorTierMagnat   VendorTier = "magnat"
	VendorTierSenior   VendorTier = "senior"
)

var validVendorTiers = []VendorTier{
	VendorTierBronze,
	VendorTierSilver,
	VendorTierGold,
	VendorTierPlatinum,
	VendorTierDiamond,
	VendorTierMagnat,
	VendorTierSenior,
}

// String implements fmt.Stringer.
func (v VendorTier) String() string {
	return string(v)
}

// IsValid reports whether the value is a known VendorTier.
func (v VendorTier) IsValid() bool {
	for _, candidate := range validVendorTiers {
		if candidate == v {
			return true
		}
	}
	return false
}

// Ordinal returns the tier's position in the ladder, lowest first.
// Unknown tiers sort below bronze.
func (v VendorTier) Ordinal() int {
	for i, candidate := range validVendorTiers {
		if candidate == v {
			return i
		}
	}
	return -1
}

// ParseVendorTier converts raw input into a VendorTier.
func ParseVendorTier(value string) (VendorTier, error) {
	for _, candidate := range validVendorTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vendor tier %q", value)
}
