// Package money wraps github.com/shopspring/decimal so that every
// monetary value crossing a function boundary in this service is a
// fixed-point decimal, never a float64. §4.1 requires HALF_UP rounding
// at two fractional digits; decimal.Decimal.Round already rounds half
// away from zero, which is equivalent to HALF_UP for the non-negative
// money values this system deals in exclusively (prices, deposits,
// totals are all ≥ 0 per §3's check constraints).
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Zero is the canonical zero value; String formats it as "0.00".
var Zero = decimal.NewFromInt(0)

// Parse parses a decimal string (as stored in the database / accepted
// from request bodies) into a decimal.Decimal. It never goes through
// float64.
func Parse(s string) (decimal.Decimal, error) {
	if s == "" {
		return Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	return d, nil
}

// RoundHalfUp rounds d to places fractional digits, HALF_UP.
func RoundHalfUp(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Round(places)
}

// String formats d at exactly 2 fractional digits for wire transport,
// per §6 ("Money is serialized as decimal strings").
func String(d decimal.Decimal) string {
	return RoundHalfUp(d, 2).StringFixed(2)
}

// NonNegative reports whether d is >= 0, matching the check
// constraints in §3 (non-negative prices, deposits, totals).
func NonNegative(d decimal.Decimal) bool {
	return !d.IsNegative()
}
