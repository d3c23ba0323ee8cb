package finance

import (
	"fmt"
	"math"

	"fairsquare/internal/errors"
)

// SignificanceThreshold is the fixed p-value cutoff for the A/B test.
const SignificanceThreshold = 0.05

// ABTestResult is the outcome of the two-proportion significance test.
type ABTestResult struct {
	ControlConversions int     `json:"control_conversions"`
	VariantConversions int     `json:"variant_conversions"`
	PValue             float64 `json:"p_value"`
	Significant        bool    `json:"is_significant"`
}

// ABTestSignificance runs a two-sided exact binomial test of the null
// hypothesis that each of the control + variant conversions was equally
// likely to come from either group (success probability 0.5 over
// n = control + variant trials).
func ABTestSignificance(controlConversions, variantConversions int) (*ABTestResult, error) {
	if controlConversions < 0 || variantConversions < 0 {
		return nil, errors.NewInvalidInputError(fmt.Sprintf(
			"conversion counts must not be negative, got control=%d variant=%d",
			controlConversions, variantConversions))
	}
	trials := controlConversions + variantConversions
	if trials == 0 {
		return nil, errors.NewInvalidInputError("at least one conversion is required")
	}

	pValue := binomTestTwoSided(variantConversions, trials, 0.5)

	return &ABTestResult{
		ControlConversions: controlConversions,
		VariantConversions: variantConversions,
		PValue:             pValue,
		Significant:        pValue < SignificanceThreshold,
	}, nil
}

// binomTestTwoSided computes the exact two-sided binomial p-value: the total
// probability of all outcomes no more likely than the observed one.
func binomTestTwoSided(successes, trials int, p float64) float64 {
	observed := binomLogPMF(successes, trials, p)
	// Relative slack absorbs log-space rounding when comparing equal masses.
	threshold := observed + 1e-7

	var pValue float64
	for k := 0; k <= trials; k++ {
		if binomLogPMF(k, trials, p) <= threshold {
			pValue += math.Exp(binomLogPMF(k, trials, p))
		}
	}

	return math.Min(pValue, 1)
}

// binomLogPMF returns the log of the binomial probability mass at k.
func binomLogPMF(k, n int, p float64) float64 {
	logChoose := lgamma(float64(n)+1) - lgamma(float64(k)+1) - lgamma(float64(n-k)+1)
	return logChoose + float64(k)*math.Log(p) + float64(n-k)*math.Log(1-p)
}

// lgamma wraps math.Lgamma, dropping the sign (arguments here are positive).
func lgamma(x float64) float64 {
	v, _ := math.Lgamma(x)
	return v
}
