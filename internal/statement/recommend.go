package statement

import "policyfund-workers/internal/models"

// Recommendation is one fund suggested by the statement pipeline.
type Recommendation struct {
	Name         string `json:"name"`
	Category     string `json:"category"`
	MaxAmount    int64  `json:"max_amount"`
	InterestRate string `json:"interest_rate"`
	Reason       string `json:"reason"`
}

// Recommend builds the statement fund list. Each rule appends at most one
// fund; the two baseline funds are always appended last.
func Recommend(latest models.FinancialStatement, r Ratios) []Recommendation {
	var recs []Recommendation

	if r.GrowthAvailable {
		switch {
		case r.GrowthRate >= 30:
			recs = append(recs, Recommendation{"High Growth Scale-up Fund", "facility", 2_000_000_000, "2.5% variable", "revenue growth of 30% or more"})
		case r.GrowthRate >= 10:
			recs = append(recs, Recommendation{"Growth Leap Fund", "facility", 1_000_000_000, "2.7% variable", "revenue growth of 10% or more"})
		}
	}

	switch {
	case r.Profitability >= 10:
		recs = append(recs, Recommendation{"Excellent Performance Fund", "operating", 500_000_000, "2.4% fixed", "net margin of 10% or more"})
	case r.Profitability >= 5:
		recs = append(recs, Recommendation{"Stable Operation Fund", "operating", 300_000_000, "2.8% fixed", "net margin of 5% or more"})
	}

	switch {
	case r.LiabilityRatio <= 100:
		recs = append(recs, Recommendation{"Smart Facility Fund", "facility", 1_000_000_000, "2.3% variable", "liabilities at most equal to equity"})
	case r.LiabilityRatio <= 200:
		recs = append(recs, Recommendation{"Facility Modernisation Fund", "facility", 500_000_000, "2.9% variable", "liabilities at most twice equity"})
	}

	switch {
	case latest.Revenue >= 10_000_000_000:
		recs = append(recs, Recommendation{"Mid-size Transition Fund", "special", 3_000_000_000, "3.0% variable", "revenue of 10B or more"})
	case latest.Revenue >= 1_000_000_000:
		recs = append(recs, Recommendation{"Small Business Expansion Fund", "special", 1_000_000_000, "2.9% variable", "revenue of 1B or more"})
	}

	return append(recs,
		Recommendation{"SEMAS General Operating Fund", "operating", 70_000_000, "3.0% (policy rate linked)", "available to every operating small business"},
		Recommendation{"KODIT Credit Guarantee", "guarantee", 300_000_000, "Guarantee fee 0.5-1.5%", "guarantee backing for bank loans"},
	)
}
