package orders

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/trefleapp/trefle-backend/pkg/config"
)

// shippingBand maps a maximum total weight to a base rate in minor units.
type shippingBand struct {
	maxWeightGrams int
	rate           int64
}

var shippingBands = []shippingBand{
	{maxWeightGrams: 500, rate: 500},
	{maxWeightGrams: 2000, rate: 1000},
	{maxWeightGrams: 5000, rate: 2000},
}

const shippingRateOverMax int64 = 3000

// Pricer computes order totals from configured rates.
type Pricer struct {
	cfg config.PricingConfig
}

// NewPricer builds a pricer from the pricing configuration.
func NewPricer(cfg config.PricingConfig) *Pricer {
	return &Pricer{cfg: cfg}
}

// Tax returns the fixed-rate tax on a subtotal, rounded half up.
func (p *Pricer) Tax(subtotal int64) int64 {
	if subtotal <= 0 || p.cfg.TaxRateBps <= 0 {
		return 0
	}
	return decimal.NewFromInt(subtotal).
		Mul(decimal.NewFromInt(int64(p.cfg.TaxRateBps))).
		Div(decimal.NewFromInt(10000)).
		Round(0).IntPart()
}

// Shipping returns the weight-band rate for the order, multiplied for
// destinations outside the home country.
func (p *Pricer) Shipping(totalWeightGrams int, destinationCountry string) int64 {
	rate := shippingRateOverMax
	for _, band := range shippingBands {
		if totalWeightGrams <= band.maxWeightGrams {
			rate = band.rate
			break
		}
	}
	if !p.isDomestic(destinationCountry) {
		multiple := int64(p.cfg.IntlShippingMultiple)
		if multiple <= 0 {
			multiple = 1
		}
		rate *= multiple
	}
	return rate
}

func (p *Pricer) isDomestic(country string) bool {
	home := strings.ToUpper(strings.TrimSpace(p.cfg.HomeCountry))
	dest := strings.ToUpper(strings.TrimSpace(country))
	if home == "" || dest == "" {
		return true
	}
	return home == dest
}
