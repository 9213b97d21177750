package fbr

import "github.com/shopspring/decimal"

// Amount is a monetary value serialised as a plain JSON number with exactly
// two decimal places. The fiscal API compares amounts byte for byte during
// validation, so the textual form must stay fixed.
type Amount struct {
	decimal.Decimal
}

// NewAmount rounds v to two decimals, half up.
func NewAmount(v decimal.Decimal) Amount {
	return Amount{Round2(v)}
}

// MarshalJSON emits the amount as an unquoted number, e.g. 180.00.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.StringFixed(2)), nil
}

// Round2 rounds to two decimal places, half away from zero. Invoice amounts
// are never negative, so this matches round-half-up.
func Round2(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

// TaxAmount computes round2(round2(value) * rate / 100). The base is rounded
// before the rate is applied to match the fiscal authority's own arithmetic.
func TaxAmount(value, ratePercent decimal.Decimal) decimal.Decimal {
	base := Round2(value)
	return Round2(base.Mul(ratePercent).Div(decimal.NewFromInt(100)))
}
