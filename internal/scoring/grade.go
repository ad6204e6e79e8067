package scoring

import "policyfund-workers/internal/models"

const (
	MaxCreditPoints      = 35
	MaxRevenuePoints     = 25
	MaxDebtRatioPoints   = 20
	MaxBusinessAgePoints = 10
	MaxEmployeePoints    = 5
	TechnologyBonus      = 5
)

var (
	CreditPoints = FloorTable[int]{
		Tiers: []Tier[int]{
			{900, 35},
			{850, 30},
			{800, 25},
			{750, 20},
			{700, 15},
		},
		Default: 8,
	}

	RevenuePoints = FloorTable[int]{
		Tiers: []Tier[int]{
			{500_000_000, 25},
			{300_000_000, 20},
			{100_000_000, 15},
			{50_000_000, 10},
		},
		Default: 5,
	}

	// DebtRatioPoints is keyed by percent; the no-revenue sentinel lands in Default.
	DebtRatioPoints = CeilingTable[int]{
		Tiers: []Tier[int]{
			{30, 20},
			{50, 15},
			{70, 10},
			{100, 6},
		},
		Default: 3,
	}

	BusinessAgePoints = FloorTable[int]{
		Tiers: []Tier[int]{
			{10, 10},
			{7, 8},
			{5, 6},
			{3, 4},
		},
		Default: 2,
	}

	EmployeePoints = FloorTable[int]{
		Tiers: []Tier[int]{
			{20, 5},
			{10, 4},
			{5, 3},
		},
		Default: 1,
	}

	// GradeCutPoints converts a 0-100 composite score to a letter grade.
	// The statement variant uses the same cut points.
	GradeCutPoints = FloorTable[models.Grade]{
		Tiers: []Tier[models.Grade]{
			{80, models.GradeS},
			{65, models.GradeA},
			{50, models.GradeB},
			{35, models.GradeC},
		},
		Default: models.GradeD,
	}
)

// GradeScore is the point breakdown behind a grade.
type GradeScore struct {
	Credit      int          `json:"credit"`
	Revenue     int          `json:"revenue"`
	DebtRatio   int          `json:"debt_ratio"`
	BusinessAge int          `json:"business_age"`
	Employees   int          `json:"employees"`
	Technology  int          `json:"technology"`
	Total       int          `json:"total"`
	Grade       models.Grade `json:"grade"`
}

// ScoreProfile computes the 100-point composite for p. Missing fields are zero
// and simply score in the lowest tier.
func ScoreProfile(p models.Profile) GradeScore {
	s := GradeScore{
		Credit:      CreditPoints.Lookup(p.EffectiveCreditScore()),
		Revenue:     RevenuePoints.Lookup(float64(p.AnnualRevenue)),
		DebtRatio:   DebtRatioPoints.Lookup(p.DebtRatio()),
		BusinessAge: BusinessAgePoints.Lookup(float64(p.BusinessAgeYears)),
		Employees:   EmployeePoints.Lookup(float64(p.EmployeeCount)),
	}
	if p.HasTechnologyCertification {
		s.Technology = TechnologyBonus
	}
	s.Total = s.Credit + s.Revenue + s.DebtRatio + s.BusinessAge + s.Employees + s.Technology
	s.Grade = GradeForScore(float64(s.Total))
	return s
}

// CalculateGrade returns the SOHO grade of p.
func CalculateGrade(p models.Profile) models.Grade {
	return ScoreProfile(p).Grade
}

func GradeForScore(score float64) models.Grade {
	return GradeCutPoints.Lookup(score)
}
