package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMoney_Convert(t *testing.T) {
	// 1000 EGP at 0.032 -> 32 USD
	source := NewMoney(decimal.RequireFromString("1000"), "EGP")
	target := source.Convert("USD", decimal.RequireFromString("0.032"))

	assert.Equal(t, "USD", target.Currency)
	assert.True(t, target.Amount.Equal(decimal.NewFromInt(32)))
}

func TestMoney_Convert_KeepsFullPrecision(t *testing.T) {
	source := NewMoney(decimal.RequireFromString("123.45"), "USD")
	target := source.Convert("SDG", decimal.RequireFromString("601.123457"))

	// 123.45 * 601.123457 = 74208.69076665
	assert.Equal(t, "74208.69076665", target.Amount.String())
	assert.Equal(t, "74208.69 SDG", target.String())
}

func TestMoney_Convert_NoBinaryFloatDrift(t *testing.T) {
	source := NewMoney(decimal.RequireFromString("0.1"), "USD")
	target := source.Convert("AED", decimal.RequireFromString("3"))

	assert.Equal(t, "0.3", target.Amount.String())
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "0.0320", FormatRate(decimal.RequireFromString("0.032")))
	assert.Equal(t, "32.00", FormatAmount(decimal.NewFromInt(32)))
}
