package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a full-precision amount in a specific currency.
// Amounts are never rounded when stored; rounding happens only when formatting.
type Money struct {
	Amount   decimal.Decimal
	Currency string // ISO 4217
}

// NewMoney creates a new Money instance.
func NewMoney(amount decimal.Decimal, currency string) Money {
	return Money{
		Amount:   amount,
		Currency: currency,
	}
}

// Convert converts the money to a target currency using rate (Target / Source).
// The product keeps full precision.
func (m Money) Convert(targetCurrency string, rate decimal.Decimal) Money {
	return Money{
		Amount:   m.Amount.Mul(rate),
		Currency: targetCurrency,
	}
}

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m.Amount.IsPositive()
}

// String returns the display form with two fractional digits.
func (m Money) String() string {
	return fmt.Sprintf("%s %s", FormatAmount(m.Amount), m.Currency)
}

// FormatAmount renders an amount for display (2 dp).
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatRate renders a rate for display (4 dp).
func FormatRate(d decimal.Decimal) string {
	return d.StringFixed(4)
}
