package finance

// ComparisonPolicy derives the reference bank rate a user rate is compared
// against. The portal historically mixed two conventions, so both are kept
// as explicitly named policies instead of a single guessed value.
type ComparisonPolicy interface {
	Name() string
	BankRatePct(userRatePct float64) float64
}

// SpreadPolicy adds a fixed spread, in percentage points, to the user rate.
type SpreadPolicy struct {
	SpreadPct float64
}

func (p SpreadPolicy) Name() string { return "spread" }

func (p SpreadPolicy) BankRatePct(userRatePct float64) float64 {
	return userRatePct + p.SpreadPct
}

// FixedRatePolicy compares against a fixed absolute bank rate regardless of
// the user rate.
type FixedRatePolicy struct {
	RatePct float64
}

func (p FixedRatePolicy) Name() string { return "fixed" }

func (p FixedRatePolicy) BankRatePct(float64) float64 { return p.RatePct }

// DefaultSpreadPolicy is the loan-forecaster convention: bank rate is the
// user rate plus three percentage points.
var DefaultSpreadPolicy = SpreadPolicy{SpreadPct: 3}

// DefaultFixedRatePolicy is the alternate convention of a flat 15% bank rate.
var DefaultFixedRatePolicy = FixedRatePolicy{RatePct: 15}

// LoanComparison reports the user schedule against the bank schedule derived
// from a comparison policy. Positive savings mean the user rate is cheaper.
type LoanComparison struct {
	Policy         string        `json:"policy"`
	BankRatePct    float64       `json:"bank_rate_pct"`
	User           *LoanSchedule `json:"user"`
	Bank           *LoanSchedule `json:"bank"`
	MonthlySavings float64       `json:"monthly_savings"`
	TotalSavings   float64       `json:"total_savings"`
}

// Compare amortizes the same loan at the user rate and at the policy's bank
// rate and reports the payment and total-cost deltas.
func Compare(principal, annualRatePct float64, termMonths int, policy ComparisonPolicy) (*LoanComparison, error) {
	user, err := Amortize(principal, annualRatePct, termMonths)
	if err != nil {
		return nil, err
	}

	bankRate := policy.BankRatePct(annualRatePct)
	bank, err := Amortize(principal, bankRate, termMonths)
	if err != nil {
		return nil, err
	}

	return &LoanComparison{
		Policy:         policy.Name(),
		BankRatePct:    bankRate,
		User:           user,
		Bank:           bank,
		MonthlySavings: bank.MonthlyPayment - user.MonthlyPayment,
		TotalSavings:   bank.TotalCost - user.TotalCost,
	}, nil
}
