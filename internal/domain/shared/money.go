package shared

import "github.com/shopspring/decimal"

// Currency is the only currency the store trades in.
const Currency = "AUD"

var hundred = decimal.NewFromInt(100)

// RoundMoney rounds an amount half-up to whole cents.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// RoundQuantity rounds a quantity to three decimal places (grams for kg units).
func RoundQuantity(d decimal.Decimal) decimal.Decimal {
	return d.Round(3)
}

// ToCents converts a dollar amount to integer cents, as payment gateways expect.
func ToCents(d decimal.Decimal) int64 {
	return RoundMoney(d).Mul(hundred).IntPart()
}

// FromCents converts integer cents back to a dollar amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// Percent returns pct percent of amount, rounded to cents.
func Percent(amount, pct decimal.Decimal) decimal.Decimal {
	return RoundMoney(amount.Mul(pct).Div(hundred))
}

// MinDecimal returns the smaller of a and b.
func MinDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}
