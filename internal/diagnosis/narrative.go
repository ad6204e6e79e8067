package diagnosis

import (
	"fmt"
	"strings"

	"policyfund-workers/internal/funds"
	"policyfund-workers/internal/models"
	"policyfund-workers/internal/scoring"
)

// Narrate renders r as plain text. Every number comes from r or p; nothing
// is recomputed here.
func Narrate(p models.Profile, r *Result) string {
	var b strings.Builder
	s := r.Score

	fmt.Fprintf(&b, "SOHO grade %s (%d/100 points: credit %d/%d, revenue %d/%d, debt ratio %d/%d, business age %d/%d, employees %d/%d, technology %d/%d).\n",
		r.Grade, s.Total,
		s.Credit, scoring.MaxCreditPoints,
		s.Revenue, scoring.MaxRevenuePoints,
		s.DebtRatio, scoring.MaxDebtRatioPoints,
		s.BusinessAge, scoring.MaxBusinessAgePoints,
		s.Employees, scoring.MaxEmployeePoints,
		s.Technology, scoring.TechnologyBonus,
	)

	if p.HasRevenue() {
		fmt.Fprintf(&b, "Debt ratio %s on annual revenue of %s.\n",
			funds.FormatPercent(roundTenth(p.DebtRatio())), funds.FormatWon(p.AnnualRevenue))
	} else {
		b.WriteString("No annual revenue reported; debt ratio scored as worst case.\n")
	}

	l := r.Limit
	fmt.Fprintf(&b, "Maximum loan limit %s: base %s (credit-based %s, revenue-based %s), adjusted by debt ratio x%.2f, business age x%.2f, technology x%.2f, grade %s x%.2f.\n",
		funds.FormatWon(r.MaxLoanLimit), funds.FormatWon(l.Base),
		funds.FormatWon(l.CreditBasedLimit), funds.FormatWon(l.RevenueBasedLimit),
		l.DebtRatioFactor, l.BusinessAgeFactor, l.TechnologyFactor, r.Grade, l.GradeWeight,
	)

	if len(r.RecommendedFunds) == 0 {
		fmt.Fprintf(&b, "No fund is fully eligible (0 of %d).\n", len(r.Evaluations))
	} else {
		fmt.Fprintf(&b, "Eligible funds (%d of %d):\n", len(r.RecommendedFunds), len(r.Evaluations))
		for _, f := range r.RecommendedFunds {
			fmt.Fprintf(&b, "- %s [%s] up to %s, %s\n", f.Name, f.Category, funds.FormatWon(f.MaxAmount), f.InterestRate)
		}
	}

	if miss, ok := funds.ClosestMiss(r.Evaluations); ok && miss.PassCount > 0 {
		fmt.Fprintf(&b, "Closest partial match: %s, %d of %d conditions met. Unmet: %s.\n",
			miss.Name, miss.PassCount, miss.TotalCount, unmet(miss))
	}

	return strings.TrimRight(b.String(), "\n")
}

func unmet(r funds.Result) string {
	var parts []string
	for _, c := range r.Conditions {
		if !c.Passed {
			parts = append(parts, fmt.Sprintf("%s (required %s, actual %s)", c.Label, c.Required, c.Actual))
		}
	}
	return strings.Join(parts, "; ")
}

func roundTenth(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}
