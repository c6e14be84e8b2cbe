package money

import (
	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits persisted for monetary amounts
const Scale = 2

var hundred = decimal.NewFromInt(100)

// Round applies half-up rounding to the persisted scale.
// decimal.Round rounds half away from zero, which is half-up for non-negative amounts.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// MinorUnits converts an amount to the smallest currency unit (cents)
func MinorUnits(d decimal.Decimal) int64 {
	return Round(d).Shift(Scale).IntPart()
}

func FromMinorUnits(units int64) decimal.Decimal {
	return decimal.New(units, -Scale)
}

// Percent returns amount × rate / 100 without intermediate rounding
func Percent(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(hundred)
}

// String renders the rounded amount with exactly two decimals, as gateways expect
func String(d decimal.Decimal) string {
	return Round(d).StringFixed(Scale)
}
