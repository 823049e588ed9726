package enums

import "fmt"

// Currency represents supported settlement currencies for order totals.
type Currency string

const (
	CurrencyXAF Currency = "XAF"
	CurrencyXOF Currency = "XOF"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

var validCurrencies = []Currency{
	CurrencyXAF,
	CurrencyXOF,
	CurrencyUSD,
	CurrencyEUR,
}

// String implements fmt.Stringer.
func (c Currency) String() string {
	return string(c)
}

// IsValid reports whether the currency is recognized.
func (c Currency) IsValid() bool {
	for _, candidate := range validCurrencies {
		if candidate == c {
			return true
		}
	}
	return false
}

// MinorUnitFactor returns the subunit scale of the currency. XAF and XOF
// have no subunit, so amounts are already whole francs.
func (c Currency) MinorUnitFactor() int64 {
	switch c {
	case CurrencyXAF, CurrencyXOF:
		return 1
	default:
		return 100
	}
}

// ParseCurrency converts a raw string into a Currency.
func ParseCurrency(value string) (Currency, error) {
	for _, candidate := range validCurrencies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid currency %q", value)
}
