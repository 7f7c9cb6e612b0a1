// Package pricing implements the booking kernel's pricing engine: a
// pure, deterministic, side-effect-free computation from
// (pricePerDay, startDate, endDate) to a full pricing snapshot. No
// Store, no Clock, no I/O — see §4.1.
package pricing

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"lalan-be/internal/money"
)

// ErrInvalidDateRange is returned when startDate >= endDate. Creation
// requires a strict gap of at least one day (minimum rental is 2
// calendar days when counted inclusive) — see §4.1 and the Open
// Question resolution in §9 of SPEC_FULL.md.
var ErrInvalidDateRange = errors.New("pricing: invalid date range")

// tier is one row of the discount table, evaluated top-to-bottom.
type tier struct {
	minDays int
	rate    decimal.Decimal
}

// discountTable is ordered from the most specific (longest duration)
// rule to the least specific, matching §4.1's "first matching row,
// top-to-bottom" rule.
var discountTable = []tier{
	{minDays: 30, rate: decimal.RequireFromString("0.20")},
	{minDays: 7, rate: decimal.RequireFromString("0.10")},
	{minDays: 1, rate: decimal.RequireFromString("0.00")},
}

// Snapshot is the complete, immutable set of pricing fields computed
// at booking creation time — the "pricing snapshot" of the GLOSSARY.
type Snapshot struct {
	TotalDays      int
	BaseTotal      decimal.Decimal
	DiscountRate   decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalTotal     decimal.Decimal
}

// discountRateFor returns the discount rate for a duration of days
// days, applying the first matching row of discountTable.
func discountRateFor(days int) decimal.Decimal {
	for _, t := range discountTable {
		if days >= t.minDays {
			return t.rate
		}
	}
	return decimal.Zero
}

// Compute is the pricing engine: a pure function of
// (pricePerDay, startDate, endDate). Equal inputs always yield equal
// outputs (§8 property 2). startDate and endDate are calendar dates
// (time component ignored); totalDays counts both ends inclusive
// (§8 property 4).
func Compute(pricePerDay decimal.Decimal, startDate, endDate time.Time) (Snapshot, error) {
	if !startDate.Before(endDate) {
		return Snapshot{}, ErrInvalidDateRange
	}

	totalDays := int(endDate.Sub(startDate).Hours()/24) + 1

	baseTotal := pricePerDay.Mul(decimal.NewFromInt(int64(totalDays)))
	rate := discountRateFor(totalDays)
	discountAmount := money.RoundHalfUp(baseTotal.Mul(rate), 2)
	finalTotal := baseTotal.Sub(discountAmount)

	return Snapshot{
		TotalDays:      totalDays,
		BaseTotal:      money.RoundHalfUp(baseTotal, 2),
		DiscountRate:   rate,
		DiscountAmount: discountAmount,
		FinalTotal:     money.RoundHalfUp(finalTotal, 2),
	}, nil
}
