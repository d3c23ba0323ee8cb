package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fairsquare/internal/errors"
)

func TestAmortize_StandardLoan(t *testing.T) {
	schedule, err := Amortize(50000, 12.0, 24)
	require.NoError(t, err)

	assert.InDelta(t, 2353.67, schedule.MonthlyPayment, 0.01)
	assert.InDelta(t, schedule.MonthlyPayment*24, schedule.TotalCost, 1e-9)
	assert.InDelta(t, schedule.TotalCost-50000, schedule.TotalInterest, 1e-9)
	assert.Greater(t, schedule.TotalInterest, 0.0)
}

func TestAmortize_ZeroRate(t *testing.T) {
	schedule, err := Amortize(12000, 0, 24)
	require.NoError(t, err)

	// The zero-rate edge case is exact, not a division by zero.
	assert.Equal(t, 500.0, schedule.MonthlyPayment)
	assert.Equal(t, 12000.0, schedule.TotalCost)
	assert.Equal(t, 0.0, schedule.TotalInterest)

	for _, p := range schedule.Periods {
		assert.Equal(t, 0.0, p.Interest)
	}
}

func TestAmortize_ScheduleInvariants(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		ratePct   float64
		term      int
	}{
		{name: "two-year loan", principal: 50000, ratePct: 12, term: 24},
		{name: "short high-rate loan", principal: 5000, ratePct: 25, term: 6},
		{name: "long low-rate loan", principal: 250000, ratePct: 5.5, term: 60},
		{name: "zero rate", principal: 9000, ratePct: 0, term: 36},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule, err := Amortize(tt.principal, tt.ratePct, tt.term)
			require.NoError(t, err)
			require.Len(t, schedule.Periods, tt.term)

			var principalSum float64
			for i, p := range schedule.Periods {
				assert.Equal(t, i+1, p.Period)
				principalSum += p.Principal
			}

			// Per-period principal allocation sums back to the loan amount.
			assert.InDelta(t, tt.principal, principalSum, 0.01)
			// The balance reaches zero at the end of the term.
			assert.InDelta(t, 0, schedule.Periods[tt.term-1].Balance, 0.01)
			// Interest dominates early payments and principal late ones.
			if tt.ratePct > 0 {
				first, last := schedule.Periods[0], schedule.Periods[tt.term-1]
				assert.Greater(t, last.Principal, first.Principal)
				assert.Greater(t, first.Interest, last.Interest)
			}
		})
	}
}

func TestAmortize_InvalidInputs(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		ratePct   float64
		term      int
	}{
		{name: "zero principal", principal: 0, ratePct: 10, term: 12},
		{name: "negative principal", principal: -100, ratePct: 10, term: 12},
		{name: "zero term", principal: 1000, ratePct: 10, term: 0},
		{name: "negative term", principal: 1000, ratePct: 10, term: -6},
		{name: "negative rate", principal: 1000, ratePct: -1, term: 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Amortize(tt.principal, tt.ratePct, tt.term)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrTypeInvalidInput), "got %v", err)
		})
	}
}

func TestCompare_SpreadPolicy(t *testing.T) {
	comparison, err := Compare(50000, 12, 24, DefaultSpreadPolicy)
	require.NoError(t, err)

	assert.Equal(t, "spread", comparison.Policy)
	assert.Equal(t, 15.0, comparison.BankRatePct)
	// The bank rate is higher, so the bank schedule costs more.
	assert.Greater(t, comparison.MonthlySavings, 0.0)
	assert.Greater(t, comparison.TotalSavings, 0.0)
	assert.InDelta(t, comparison.MonthlySavings*24, comparison.TotalSavings, 0.01)
}

func TestCompare_FixedRatePolicy(t *testing.T) {
	comparison, err := Compare(50000, 20, 24, DefaultFixedRatePolicy)
	require.NoError(t, err)

	assert.Equal(t, "fixed", comparison.Policy)
	assert.Equal(t, 15.0, comparison.BankRatePct)
	// Here the fixed bank rate undercuts the user rate.
	assert.Less(t, comparison.TotalSavings, 0.0)
}

func TestCompare_InvalidLoan(t *testing.T) {
	_, err := Compare(-1, 12, 24, DefaultSpreadPolicy)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeInvalidInput))
}

func TestPayback(t *testing.T) {
	schedule, err := Amortize(50000, 12, 24)
	require.NoError(t, err)

	ctx := Payback(schedule, 1200)
	assert.Equal(t, 1200.0, ctx.AvgDailySales)
	assert.Equal(t, 2.0, ctx.DaysPerPayment)
	assert.Equal(t, 21.0, ctx.PrincipalPaymentRatio)
}
