package commission

import (
	"github.com/shopspring/decimal"

	"github.com/trefleapp/trefle-backend/pkg/enums"
)

// tierRule binds a tier to its commission rate and the delivered-sales
// count needed to reach it.
type tierRule struct {
	tier           enums.VendorTier
	rateBps        int64
	salesThreshold int64
}

// Ordered lowest tier first. A vendor qualifies for the highest rule whose
// threshold their delivered-sales count meets.
var tierRules = []tierRule{
	{tier: enums.VendorTierBronze, rateBps: 450, salesThreshold: 0},
	{tier: enums.VendorTierSilver, rateBps: 425, salesThreshold: 20},
	{tier: enums.VendorTierGold, rateBps: 400, salesThreshold: 50},
	{tier: enums.VendorTierPlatinum, rateBps: 375, salesThreshold: 100},
	{tier: enums.VendorTierDiamond, rateBps: 350, salesThreshold: 250},
	{tier: enums.VendorTierMagnat, rateBps: 325, salesThreshold: 500},
	{tier: enums.VendorTierSenior, rateBps: 300, salesThreshold: 1000},
}

// RateBps returns the commission rate in basis points for a tier.
// Unknown tiers fall back to the bronze rate.
func RateBps(tier enums.VendorTier) int64 {
	for _, rule := range tierRules {
		if rule.tier == tier {
			return rule.rateBps
		}
	}
	return tierRules[0].rateBps
}

// TierForSales returns the tier a delivered-sales count qualifies for.
func TierForSales(totalSales int64) enums.VendorTier {
	qualified := tierRules[0].tier
	for _, rule := range tierRules {
		if totalSales >= rule.salesThreshold {
			qualified = rule.tier
		}
	}
	return qualified
}

// NextTier returns the better of the current tier and the tier the sales
// count qualifies for. Tiers never move down once earned.
func NextTier(current enums.VendorTier, totalSales int64) enums.VendorTier {
	qualified := TierForSales(totalSales)
	if qualified.Ordinal() > current.Ordinal() {
		return qualified
	}
	if current.IsValid() {
		return current
	}
	return qualified
}

// NextThreshold reports the tier above the current one and the
// delivered-sales count that unlocks it. ok is false at the top of
// the ladder.
func NextThreshold(current enums.VendorTier, totalSales int64) (enums.VendorTier, int64, bool) {
	for _, rule := range tierRules {
		if rule.tier.Ordinal() > current.Ordinal() && rule.salesThreshold > totalSales {
			return rule.tier, rule.salesThreshold, true
		}
	}
	return current, 0, false
}

// Compute returns the platform commission for an order total at the given
// tier, rounded half up to the nearest minor unit.
func Compute(totalAmount int64, tier enums.VendorTier) int64 {
	if totalAmount <= 0 {
		return 0
	}
	total := decimal.NewFromInt(totalAmount)
	rate := decimal.NewFromInt(RateBps(tier))
	return total.Mul(rate).Div(decimal.NewFromInt(10000)).Round(0).IntPart()
}
