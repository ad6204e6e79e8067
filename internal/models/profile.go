package models

// DebtRatioSentinel stands in for the debt ratio of an applicant with no revenue.
// It sits above every tier boundary so lookups land in the worst bucket.
const DebtRatioSentinel = 999.0

// Profile is the canonical applicant view every calculator reads. Build it with
// ProfileFromFields at the boundary; calculators never see the legacy field names.
type Profile struct {
	CreditScorePrimary   int   `json:"credit_score_primary"`
	CreditScoreSecondary int   `json:"credit_score_secondary"`
	AnnualRevenue        int64 `json:"annual_revenue"`
	TotalDebt            int64 `json:"total_debt"`

	// Caller supplied. Not required to sum to TotalDebt.
	PolicyFundDebt    int64 `json:"policy_fund_debt"`
	CreditLoanDebt    int64 `json:"credit_loan_debt"`
	SecondaryLoanDebt int64 `json:"secondary_loan_debt"`
	CardLoanDebt      int64 `json:"card_loan_debt"`

	HasTechnologyCertification bool `json:"has_technology_certification"`
	BusinessAgeYears           int  `json:"business_age_years"`
	EmployeeCount              int  `json:"employee_count"`
	ApplicantAge               int  `json:"applicant_age"`
}

// EffectiveCreditScore averages the two bureau scores when both are present and
// falls back to whichever one is non-zero.
func (p Profile) EffectiveCreditScore() float64 {
	a, b := p.CreditScorePrimary, p.CreditScoreSecondary
	switch {
	case a > 0 && b > 0:
		return float64(a+b) / 2
	case a > 0:
		return float64(a)
	case b > 0:
		return float64(b)
	default:
		return 0
	}
}

// DebtRatio is total debt over annual revenue in percent, or DebtRatioSentinel
// when revenue is not positive.
func (p Profile) DebtRatio() float64 {
	if p.AnnualRevenue <= 0 {
		return DebtRatioSentinel
	}
	return float64(p.TotalDebt) / float64(p.AnnualRevenue) * 100
}

// HasRevenue reports whether DebtRatio is a real ratio.
func (p Profile) HasRevenue() bool {
	return p.AnnualRevenue > 0
}

// DebtBreakdown returns the sub-components keyed by kind.
func (p Profile) DebtBreakdown() map[string]int64 {
	return map[string]int64{
		"policy_fund":    p.PolicyFundDebt,
		"credit_loan":    p.CreditLoanDebt,
		"secondary_loan": p.SecondaryLoanDebt,
		"card_loan":      p.CardLoanDebt,
	}
}
