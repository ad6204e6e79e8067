// Package diagnosis composes the grade, loan limit and fund evaluation of a
// point-in-time profile into one bundle with a narrative.
package diagnosis

import (
	"policyfund-workers/internal/funds"
	"policyfund-workers/internal/models"
	"policyfund-workers/internal/scoring"
)

// Result is the point-in-time diagnosis bundle.
type Result struct {
	Grade            models.Grade           `json:"grade"`
	Score            scoring.GradeScore     `json:"score"`
	MaxLoanLimit     int64                  `json:"max_loan_limit"`
	Limit            scoring.LimitBreakdown `json:"limit_breakdown"`
	RecommendedFunds []funds.Result         `json:"recommended_funds"`
	Evaluations      []funds.Result         `json:"evaluations"`
	CatalogueVersion string                 `json:"catalogue_version"`
	Details          string                 `json:"details"`
}

// RecommendedFundTerms lists the eligible funds in ranked order with the
// terms a notification quotes.
func (r *Result) RecommendedFundTerms() []models.RecommendedFund {
	terms := make([]models.RecommendedFund, len(r.RecommendedFunds))
	for i, f := range r.RecommendedFunds {
		terms[i] = models.RecommendedFund{
			Name:         f.Name,
			Category:     string(f.Category),
			MaxAmount:    f.MaxAmount,
			InterestRate: f.InterestRate,
		}
	}
	return terms
}

// Diagnose grades p, derives its loan limit from that grade, evaluates every
// fund of c and renders the narrative from those same values.
func Diagnose(c *funds.Catalogue, p models.Profile) *Result {
	score := scoring.ScoreProfile(p)
	limit := scoring.BreakdownLoanLimit(p, score.Grade)
	evaluations := funds.Evaluate(c, p)

	r := &Result{
		Grade:            score.Grade,
		Score:            score,
		MaxLoanLimit:     limit.Limit,
		Limit:            limit,
		RecommendedFunds: funds.Eligible(evaluations),
		Evaluations:      evaluations,
		CatalogueVersion: c.Version(),
	}
	r.Details = Narrate(p, r)
	return r
}
