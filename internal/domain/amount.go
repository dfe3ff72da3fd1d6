package domain

import "github.com/shopspring/decimal"

// Scale is the fixed-point base for the ledger's scaling factor. A factor of
// exactly Scale means shares convert 1:1 to display units.
var Scale = decimal.New(1, 18)

var one = decimal.NewFromInt(1)

// MulDivFloor returns floor(a * b / c). All amounts in the core are
// integer-valued decimals, so QuoRem at precision 0 gives the exact
// truncated quotient.
func MulDivFloor(a, b, c decimal.Decimal) decimal.Decimal {
	q, _ := a.Mul(b).QuoRem(c, 0)
	return q
}

// MulDivCeil returns ceil(a * b / c). Used where rounding must favor the
// pool over the holder, e.g. shares burned for a given display amount.
func MulDivCeil(a, b, c decimal.Decimal) decimal.Decimal {
	q, r := a.Mul(b).QuoRem(c, 0)
	if !r.IsZero() {
		q = q.Add(one)
	}
	return q
}

// IsPositiveAmount reports whether d is a usable quantity: strictly positive
// and integral in base units.
func IsPositiveAmount(d decimal.Decimal) bool {
	return d.IsPositive() && d.Equal(d.Truncate(0))
}
