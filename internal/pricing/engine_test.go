package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCompute_TierBoundaries(t *testing.T) {
	// §8 property 3: 6 days -> 0%, 7 days -> 10%, 29 days -> 10%, 30 days -> 20%.
	cases := []struct {
		name         string
		days         int
		expectedRate string
	}{
		{"6 days is zero discount", 6, "0"},
		{"7 days enters 10% tier", 7, "0.1"},
		{"29 days stays in 10% tier", 29, "0.1"},
		{"30 days enters 20% tier", 30, "0.2"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start := date("2025-01-01")
			end := start.AddDate(0, 0, tc.days-1)

			snap, err := Compute(decimal.NewFromInt(100), start, end)
			require.NoError(t, err)
			assert.Equal(t, tc.days, snap.TotalDays)
			assert.True(t, snap.DiscountRate.Equal(decimal.RequireFromString(tc.expectedRate)),
				"rate=%s want=%s", snap.DiscountRate, tc.expectedRate)
		})
	}
}

func TestCompute_InclusiveCounting(t *testing.T) {
	// §8 property 4: totalDays(start, start+k) = k+1 for integer k >= 1.
	start := date("2025-03-01")
	for k := 1; k <= 40; k++ {
		end := start.AddDate(0, 0, k)
		snap, err := Compute(decimal.NewFromInt(10), start, end)
		require.NoError(t, err)
		assert.Equal(t, k+1, snap.TotalDays)
	}
}

func TestCompute_S2Scenario(t *testing.T) {
	// S2: pricePerDay=500, 2025-03-01 -> 2025-03-08.
	snap, err := Compute(decimal.NewFromInt(500), date("2025-03-01"), date("2025-03-08"))
	require.NoError(t, err)
	assert.Equal(t, 8, snap.TotalDays)
	assert.Equal(t, "4000", snap.BaseTotal.String())
	assert.True(t, snap.DiscountRate.Equal(decimal.RequireFromString("0.10")))
	assert.Equal(t, "400", snap.DiscountAmount.String())
	assert.Equal(t, "3600", snap.FinalTotal.String())
}

func TestCompute_S3Scenario(t *testing.T) {
	// S3: pricePerDay=100, 30-day rental.
	start := date("2025-01-01")
	end := start.AddDate(0, 0, 29)
	snap, err := Compute(decimal.NewFromInt(100), start, end)
	require.NoError(t, err)
	assert.True(t, snap.DiscountRate.Equal(decimal.RequireFromString("0.20")))
	assert.Equal(t, "2400", snap.FinalTotal.String())
}

func TestCompute_InvalidDateRange(t *testing.T) {
	start := date("2025-03-05")

	_, err := Compute(decimal.NewFromInt(100), start, start)
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = Compute(decimal.NewFromInt(100), start, start.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestCompute_Deterministic(t *testing.T) {
	// §8 property 2: equal inputs yield equal outputs.
	price := decimal.NewFromInt(250)
	start := date("2025-06-01")
	end := date("2025-06-10")

	a, err := Compute(price, start, end)
	require.NoError(t, err)
	b, err := Compute(price, start, end)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestCompute_DepositIndependence(t *testing.T) {
	// §8 property 10: deposit is not part of FinalTotal. The engine
	// never even accepts a deposit argument, so there is no code path
	// by which it could leak into FinalTotal.
	snap, err := Compute(decimal.NewFromInt(100), date("2025-01-01"), date("2025-01-10"))
	require.NoError(t, err)
	assert.False(t, snap.FinalTotal.IsZero())
}
