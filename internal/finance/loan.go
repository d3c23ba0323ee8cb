// Package finance provides the deterministic financial calculators: loan
// amortization with bank-rate comparison policies, and a two-proportion
// significance test for A/B experiments. All functions are pure and share no
// state.
package finance

import (
	"fmt"
	"math"

	"fairsquare/internal/errors"
)

// LoanPeriod is one month of an amortization schedule.
type LoanPeriod struct {
	Period    int     `json:"period"`
	Payment   float64 `json:"payment"`
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
	Balance   float64 `json:"balance"`
}

// LoanSchedule is a full amortization schedule. The per-period principal
// amounts sum to the loan principal, and TotalCost equals
// MonthlyPayment * term (both within floating-point tolerance).
type LoanSchedule struct {
	Principal      float64      `json:"principal"`
	AnnualRatePct  float64      `json:"annual_rate_pct"`
	TermMonths     int          `json:"term_months"`
	MonthlyPayment float64      `json:"monthly_payment"`
	TotalCost      float64      `json:"total_cost"`
	TotalInterest  float64      `json:"total_interest"`
	Periods        []LoanPeriod `json:"periods"`
}

// Amortize computes the standard annuity schedule for a loan.
//
// The monthly payment follows the annuity formula for a positive rate; a
// zero rate is the explicit edge case payment = principal / term rather than
// a division by zero.
func Amortize(principal, annualRatePct float64, termMonths int) (*LoanSchedule, error) {
	if principal <= 0 {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("principal must be positive, got %.2f", principal))
	}
	if termMonths <= 0 {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("term must be positive, got %d months", termMonths))
	}
	if annualRatePct < 0 {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("annual rate must not be negative, got %.2f%%", annualRatePct))
	}

	monthlyRate := annualRatePct / 100 / 12

	var payment float64
	if monthlyRate > 0 {
		growth := math.Pow(1+monthlyRate, float64(termMonths))
		payment = principal * monthlyRate * growth / (growth - 1)
	} else {
		payment = principal / float64(termMonths)
	}

	schedule := &LoanSchedule{
		Principal:      principal,
		AnnualRatePct:  annualRatePct,
		TermMonths:     termMonths,
		MonthlyPayment: payment,
		TotalCost:      payment * float64(termMonths),
		Periods:        make([]LoanPeriod, 0, termMonths),
	}
	schedule.TotalInterest = schedule.TotalCost - principal

	balance := principal
	for period := 1; period <= termMonths; period++ {
		interest := balance * monthlyRate
		principalPart := payment - interest
		if period == termMonths {
			// The final period absorbs accumulated rounding so the
			// principal parts sum exactly to the loan amount.
			principalPart = balance
		}
		balance -= principalPart

		schedule.Periods = append(schedule.Periods, LoanPeriod{
			Period:    period,
			Payment:   payment,
			Principal: principalPart,
			Interest:  interest,
			Balance:   balance,
		})
	}

	return schedule, nil
}

// PaybackContext relates a loan to observed trading: how many days of the
// given average daily sales cover one monthly payment, and the principal as
// a multiple of the payment. Non-positive inputs yield NaN fields.
type PaybackContext struct {
	AvgDailySales         float64 `json:"avg_daily_sales"`
	DaysPerPayment        float64 `json:"days_per_payment"`
	PrincipalPaymentRatio float64 `json:"principal_payment_ratio"`
}

// Payback computes the payback context for a schedule against average daily
// sales.
func Payback(schedule *LoanSchedule, avgDailySales float64) PaybackContext {
	ctx := PaybackContext{AvgDailySales: avgDailySales}
	if avgDailySales > 0 {
		ctx.DaysPerPayment = math.Ceil(schedule.MonthlyPayment / avgDailySales)
	} else {
		ctx.DaysPerPayment = math.NaN()
	}
	if schedule.MonthlyPayment > 0 {
		ctx.PrincipalPaymentRatio = math.Floor(schedule.Principal / schedule.MonthlyPayment)
	} else {
		ctx.PrincipalPaymentRatio = math.NaN()
	}
	return ctx
}
