// Package statement diagnoses an applicant from a one to three year financial
// statement history instead of point-in-time fields.
package statement

import (
	"errors"
	"fmt"

	"policyfund-workers/internal/models"
	"policyfund-workers/internal/scoring"
)

// ErrInvalidSeries is returned for an empty series or one longer than MaxYears.
var ErrInvalidSeries = errors.New("STATEMENT_SERIES_INVALID")

const (
	MaxYears = 3

	MinLoanLimit  int64 = 50_000_000
	MaxLoanLimit  int64 = 2_000_000_000
	LoanLimitUnit int64 = 10_000_000

	// RevenueBaseRate is the share of latest revenue used as the limit base.
	RevenueBaseRate = 0.5

	// NeutralGrowthPoints is awarded when growth cannot be measured.
	NeutralGrowthPoints = 15

	// LiabilityRatioSentinel replaces liabilities/equity when equity is not positive.
	LiabilityRatioSentinel = 999.0
)

// Ratios are the derived percentages of a series.
type Ratios struct {
	// GrowthRate compares the last year's revenue to the first's. It is 0 and
	// GrowthAvailable false for a single year or a zero baseline.
	GrowthRate      float64 `json:"growth_rate"`
	GrowthAvailable bool    `json:"growth_available"`
	Profitability   float64 `json:"profitability_ratio"`
	Stability       float64 `json:"stability_ratio"`
	OperatingMargin float64 `json:"operating_margin"`
	LiabilityRatio  float64 `json:"liability_ratio"`
}

// GradeScore is the 100-point statement composite.
type GradeScore struct {
	Profitability int          `json:"profitability"`
	Growth        int          `json:"growth"`
	Stability     int          `json:"stability"`
	Scale         int          `json:"scale"`
	Total         int          `json:"total"`
	Grade         models.Grade `json:"grade"`
}

// LimitBreakdown keeps the intermediates of the statement loan limit.
type LimitBreakdown struct {
	Base                    int64   `json:"base"`
	ProfitabilityMultiplier float64 `json:"profitability_multiplier"`
	GrowthMultiplier        float64 `json:"growth_multiplier"`
	GradeWeight             float64 `json:"grade_weight"`
	Adjusted                float64 `json:"adjusted"`
	Limit                   int64   `json:"limit"`
}

// Result is the statement-based diagnosis.
type Result struct {
	Years            int                       `json:"years"`
	Latest           models.FinancialStatement `json:"latest"`
	Ratios           Ratios                    `json:"ratios"`
	Score            GradeScore                `json:"score"`
	Grade            models.Grade              `json:"grade"`
	HealthScore      int                       `json:"health_score"`
	MaxLoanLimit     int64                     `json:"max_loan_limit"`
	Limit            LimitBreakdown            `json:"limit_breakdown"`
	RecommendedFunds []Recommendation          `json:"recommended_funds"`
}

// Names lists the recommended fund names in order.
func (r *Result) Names() []string {
	names := make([]string, 0, len(r.RecommendedFunds))
	for _, rec := range r.RecommendedFunds {
		names = append(names, rec.Name)
	}
	return names
}

// FundTerms converts the recommendations for workers downstream of the
// diagnosis.
func (r *Result) FundTerms() []models.RecommendedFund {
	terms := make([]models.RecommendedFund, len(r.RecommendedFunds))
	for i, rec := range r.RecommendedFunds {
		terms[i] = models.RecommendedFund{
			Name:         rec.Name,
			Category:     rec.Category,
			MaxAmount:    rec.MaxAmount,
			InterestRate: rec.InterestRate,
			Reason:       rec.Reason,
		}
	}
	return terms
}

// Analyze runs the statement pipeline over series, ordered oldest first.
func Analyze(series []models.FinancialStatement) (*Result, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: no statements", ErrInvalidSeries)
	}
	if len(series) > MaxYears {
		return nil, fmt.Errorf("%w: %d statements, at most %d allowed", ErrInvalidSeries, len(series), MaxYears)
	}

	latest := series[len(series)-1]
	ratios := CalculateRatios(series)
	score := ScoreStatements(latest, ratios)
	limit := BreakdownLoanLimit(latest, ratios, score.Grade)

	return &Result{
		Years:            len(series),
		Latest:           latest,
		Ratios:           ratios,
		Score:            score,
		Grade:            score.Grade,
		HealthScore:      HealthScore(ratios),
		MaxLoanLimit:     limit.Limit,
		Limit:            limit,
		RecommendedFunds: Recommend(latest, ratios),
	}, nil
}

// CalculateRatios derives every ratio from series. series must not be empty.
func CalculateRatios(series []models.FinancialStatement) Ratios {
	first, latest := series[0], series[len(series)-1]

	var r Ratios
	if len(series) >= 2 && first.Revenue > 0 {
		r.GrowthRate = float64(latest.Revenue-first.Revenue) / float64(first.Revenue) * 100
		r.GrowthAvailable = true
	}
	if latest.Revenue > 0 {
		r.Profitability = float64(latest.NetProfit) / float64(latest.Revenue) * 100
		r.OperatingMargin = float64(latest.OperatingProfit) / float64(latest.Revenue) * 100
	}
	if latest.TotalAssets > 0 {
		r.Stability = float64(latest.Equity) / float64(latest.TotalAssets) * 100
	}
	r.LiabilityRatio = LiabilityRatioSentinel
	if latest.Equity > 0 {
		r.LiabilityRatio = float64(latest.TotalLiabilities) / float64(latest.Equity) * 100
	}
	return r
}

var (
	ProfitabilityPoints = scoring.FloorTable[int]{
		Tiers:   []scoring.Tier[int]{{15, 40}, {10, 32}, {5, 24}, {0, 14}},
		Default: 5,
	}
	GrowthPoints = scoring.FloorTable[int]{
		Tiers:   []scoring.Tier[int]{{30, 30}, {15, 24}, {5, 18}, {0, 12}},
		Default: 5,
	}
	StabilityPoints = scoring.FloorTable[int]{
		Tiers:   []scoring.Tier[int]{{60, 20}, {40, 15}, {20, 10}},
		Default: 5,
	}
	ScalePoints = scoring.FloorTable[int]{
		Tiers: []scoring.Tier[int]{
			{10_000_000_000, 10},
			{5_000_000_000, 8},
			{1_000_000_000, 6},
			{500_000_000, 4},
		},
		Default: 2,
	}
)

// ScoreStatements weighs profitability 40, growth 30, stability 20 and scale 10.
func ScoreStatements(latest models.FinancialStatement, r Ratios) GradeScore {
	s := GradeScore{
		Profitability: ProfitabilityPoints.Lookup(r.Profitability),
		Growth:        NeutralGrowthPoints,
		Stability:     StabilityPoints.Lookup(r.Stability),
		Scale:         ScalePoints.Lookup(float64(latest.Revenue)),
	}
	if r.GrowthAvailable {
		s.Growth = GrowthPoints.Lookup(r.GrowthRate)
	}
	s.Total = s.Profitability + s.Growth + s.Stability + s.Scale
	s.Grade = scoring.GradeForScore(float64(s.Total))
	return s
}

var (
	operatingMarginHealth = scoring.FloorTable[int]{
		Tiers:   []scoring.Tier[int]{{15, 30}, {10, 24}, {5, 18}, {0, 10}},
		Default: 0,
	}
	equityRatioHealth = scoring.FloorTable[int]{
		Tiers:   []scoring.Tier[int]{{50, 30}, {30, 20}, {10, 10}},
		Default: 0,
	}
	growthHealth = scoring.FloorTable[int]{
		Tiers:   []scoring.Tier[int]{{20, 20}, {10, 15}, {0, 10}},
		Default: 0,
	}
	liabilityHealth = scoring.CeilingTable[int]{
		Tiers:     []scoring.Tier[int]{{100, 20}, {200, 12}, {400, 5}},
		Default:   0,
		Inclusive: true,
	}
	neutralGrowthHealth = 10
)

// HealthScore is a 0-100 financial health indicator.
func HealthScore(r Ratios) int {
	score := operatingMarginHealth.Lookup(r.OperatingMargin) +
		equityRatioHealth.Lookup(r.Stability) +
		liabilityHealth.Lookup(r.LiabilityRatio)
	if r.GrowthAvailable {
		score += growthHealth.Lookup(r.GrowthRate)
	} else {
		score += neutralGrowthHealth
	}
	return min(max(score, 0), 100)
}

var (
	ProfitabilityMultiplier = scoring.FloorTable[float64]{
		Tiers:   []scoring.Tier[float64]{{10, 1.30}, {5, 1.15}, {0, 1.00}},
		Default: 0.70,
	}
	GrowthMultiplier = scoring.FloorTable[float64]{
		Tiers:   []scoring.Tier[float64]{{20, 1.20}, {10, 1.10}, {0, 1.00}},
		Default: 0.85,
	}
	GradeWeight = map[models.Grade]float64{
		models.GradeS: 1.40,
		models.GradeA: 1.20,
		models.GradeB: 1.00,
		models.GradeC: 0.85,
		models.GradeD: 0.70,
	}
)

// CalculateLoanLimit returns the statement-based maximum loan limit.
func CalculateLoanLimit(latest models.FinancialStatement, r Ratios, g models.Grade) int64 {
	return BreakdownLoanLimit(latest, r, g).Limit
}

func BreakdownLoanLimit(latest models.FinancialStatement, r Ratios, g models.Grade) LimitBreakdown {
	b := LimitBreakdown{
		Base:                    int64(float64(latest.Revenue) * RevenueBaseRate),
		ProfitabilityMultiplier: ProfitabilityMultiplier.Lookup(r.Profitability),
		GrowthMultiplier:        1.0,
	}
	if r.GrowthAvailable {
		b.GrowthMultiplier = GrowthMultiplier.Lookup(r.GrowthRate)
	}
	weight, ok := GradeWeight[g]
	if !ok {
		weight = GradeWeight[models.GradeD]
	}
	b.GradeWeight = weight

	b.Adjusted = float64(b.Base) * b.ProfitabilityMultiplier * b.GrowthMultiplier * b.GradeWeight
	b.Limit = scoring.ClampRound(b.Adjusted, MinLoanLimit, MaxLoanLimit, LoanLimitUnit)
	return b
}
