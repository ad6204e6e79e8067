package scoring

import (
	"math"

	"policyfund-workers/internal/models"
)

const (
	MinLoanLimit    int64 = 30_000_000
	MaxLoanLimit    int64 = 1_000_000_000
	LoanLimitUnit   int64 = 10_000_000
	TechnologyBoost       = 1.15
)

var (
	CreditBasedLimit = FloorTable[int64]{
		Tiers: []Tier[int64]{
			{900, 500_000_000},
			{850, 400_000_000},
			{800, 300_000_000},
			{750, 200_000_000},
			{700, 150_000_000},
			{650, 100_000_000},
		},
		Default: 50_000_000,
	}

	// RevenueMultiplier is keyed by effective credit score.
	RevenueMultiplier = FloorTable[float64]{
		Tiers: []Tier[float64]{
			{850, 0.60},
			{750, 0.50},
		},
		Default: 0.40,
	}

	DebtRatioFactor = CeilingTable[float64]{
		Tiers: []Tier[float64]{
			{30, 1.10},
			{50, 1.00},
			{70, 0.80},
			{100, 0.50},
		},
		Default: 0.20,
	}

	BusinessAgeFactor = FloorTable[float64]{
		Tiers: []Tier[float64]{
			{10, 1.15},
			{7, 1.10},
			{5, 1.05},
			{3, 1.00},
			{1, 0.90},
		},
		Default: 0.80,
	}

	GradeWeight = map[models.Grade]float64{
		models.GradeS: 1.30,
		models.GradeA: 1.15,
		models.GradeB: 1.00,
		models.GradeC: 0.85,
		models.GradeD: 0.70,
	}
)

// LimitBreakdown carries every intermediate of a loan limit calculation for audit.
type LimitBreakdown struct {
	EffectiveCreditScore float64 `json:"effective_credit_score"`
	CreditBasedLimit     int64   `json:"credit_based_limit"`
	RevenueMultiplier    float64 `json:"revenue_multiplier"`
	RevenueBasedLimit    int64   `json:"revenue_based_limit"`
	Base                 int64   `json:"base"`
	DebtRatioFactor      float64 `json:"debt_ratio_factor"`
	BusinessAgeFactor    float64 `json:"business_age_factor"`
	TechnologyFactor     float64 `json:"technology_factor"`
	GradeWeight          float64 `json:"grade_weight"`
	Adjusted             float64 `json:"adjusted"`
	Limit                int64   `json:"limit"`
}

// CalculateLoanLimit returns the point-in-time maximum loan limit for p at grade g.
func CalculateLoanLimit(p models.Profile, g models.Grade) int64 {
	return BreakdownLoanLimit(p, g).Limit
}

// BreakdownLoanLimit runs the limit calculation and keeps the intermediates.
// An unknown grade weighs as D.
func BreakdownLoanLimit(p models.Profile, g models.Grade) LimitBreakdown {
	score := p.EffectiveCreditScore()

	b := LimitBreakdown{
		EffectiveCreditScore: score,
		CreditBasedLimit:     CreditBasedLimit.Lookup(score),
		RevenueMultiplier:    RevenueMultiplier.Lookup(score),
		DebtRatioFactor:      DebtRatioFactor.Lookup(p.DebtRatio()),
		BusinessAgeFactor:    BusinessAgeFactor.Lookup(float64(p.BusinessAgeYears)),
		TechnologyFactor:     1.0,
	}
	b.RevenueBasedLimit = int64(math.Round(float64(p.AnnualRevenue) * b.RevenueMultiplier))
	b.Base = max(b.CreditBasedLimit, b.RevenueBasedLimit)

	if p.HasTechnologyCertification {
		b.TechnologyFactor = TechnologyBoost
	}
	weight, ok := GradeWeight[g]
	if !ok {
		weight = GradeWeight[models.GradeD]
	}
	b.GradeWeight = weight

	b.Adjusted = float64(b.Base) * b.DebtRatioFactor * b.BusinessAgeFactor * b.TechnologyFactor * b.GradeWeight
	b.Limit = ClampRound(b.Adjusted, MinLoanLimit, MaxLoanLimit, LoanLimitUnit)
	return b
}
