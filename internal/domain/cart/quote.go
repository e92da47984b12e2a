package cart

import "github.com/shopspring/decimal"

// DefaultTaxRate is the sales tax applied on top of the stored subtotal.
var DefaultTaxRate = decimal.RequireFromString("0.05")

// Quote is the price breakdown shown before and after checkout. Amounts are
// exact; round with StringFixed(2) when displaying.
type Quote struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// NewQuote computes tax and grand total for subtotal at the given rate.
func NewQuote(subtotal, taxRate decimal.Decimal) Quote {
	tax := subtotal.Mul(taxRate)
	return Quote{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}
