package order

import (
	"github.com/shopspring/decimal"
	"github.com/zambezimeats/backend/internal/domain/shared"
)

// Totals is the money breakdown of an order.
type Totals struct {
	Subtotal    decimal.Decimal
	Discount    decimal.Decimal
	DeliveryFee decimal.Decimal
	// Tax is the GST component already included in Total.
	Tax   decimal.Decimal
	Total decimal.Decimal
}

// ComputeTotals derives the total as subtotal - discount + delivery fee and
// extracts the GST component at gstRate percent from the GST-inclusive total.
func ComputeTotals(subtotal, discount, deliveryFee, gstRate decimal.Decimal) Totals {
	subtotal = shared.RoundMoney(subtotal)
	discount = shared.RoundMoney(shared.MinDecimal(discount, subtotal))
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	deliveryFee = shared.RoundMoney(deliveryFee)
	total := subtotal.Sub(discount).Add(deliveryFee)

	tax := decimal.Zero
	if gstRate.IsPositive() {
		tax = shared.RoundMoney(total.Mul(gstRate).Div(gstRate.Add(decimal.NewFromInt(100))))
	}
	return Totals{
		Subtotal:    subtotal,
		Discount:    discount,
		DeliveryFee: deliveryFee,
		Tax:         tax,
		Total:       total,
	}
}

// LineTotal prices a quantity at unitPrice, rounded to cents.
func LineTotal(unitPrice, qty decimal.Decimal) decimal.Decimal {
	return shared.RoundMoney(unitPrice.Mul(qty))
}
