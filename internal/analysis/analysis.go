// Package analysis produces the descriptive company report: one scored level
// per dimension, a weighted overall score and a short prose summary.
package analysis

import (
	"fmt"
	"math"
	"strings"

	"policyfund-workers/internal/funds"
	"policyfund-workers/internal/models"
	"policyfund-workers/internal/scoring"
)

type Level string

const (
	LevelExcellent Level = "excellent"
	LevelGood      Level = "good"
	LevelFair      Level = "fair"
	LevelPoor      Level = "poor"
)

type Dimension string

const (
	DimensionRevenue     Dimension = "revenue"
	DimensionDebt        Dimension = "debt"
	DimensionCredit      Dimension = "credit"
	DimensionBusinessAge Dimension = "business_age"
	DimensionHeadcount   Dimension = "headcount"
)

// Weights sum to 100.
var Weights = map[Dimension]int{
	DimensionRevenue:     25,
	DimensionDebt:        25,
	DimensionCredit:      25,
	DimensionBusinessAge: 15,
	DimensionHeadcount:   10,
}

var dimensionOrder = []Dimension{
	DimensionRevenue,
	DimensionDebt,
	DimensionCredit,
	DimensionBusinessAge,
	DimensionHeadcount,
}

var levelCuts = scoring.FloorTable[Level]{
	Tiers:   []scoring.Tier[Level]{{80, LevelExcellent}, {60, LevelGood}, {40, LevelFair}},
	Default: LevelPoor,
}

// LevelFor maps a 0-100 score to its level.
func LevelFor(score float64) Level {
	return levelCuts.Lookup(score)
}

var (
	revenueScore = scoring.FloorTable[int]{
		Tiers: []scoring.Tier[int]{
			{1_000_000_000, 100},
			{500_000_000, 80},
			{300_000_000, 65},
			{100_000_000, 45},
			{1, 25},
		},
		Default: 0,
	}
	debtScore = scoring.CeilingTable[int]{
		Tiers:   []scoring.Tier[int]{{50, 100}, {100, 80}, {200, 60}, {300, 40}},
		Default: 20,
	}
	creditScore = scoring.FloorTable[int]{
		Tiers:   []scoring.Tier[int]{{900, 100}, {800, 85}, {700, 65}, {600, 45}},
		Default: 25,
	}
	businessAgeScore = scoring.FloorTable[int]{
		Tiers:   []scoring.Tier[int]{{10, 100}, {7, 85}, {5, 70}, {3, 55}, {1, 40}},
		Default: 20,
	}
	headcountScore = scoring.FloorTable[int]{
		Tiers:   []scoring.Tier[int]{{50, 100}, {20, 85}, {10, 70}, {5, 55}, {1, 40}},
		Default: 20,
	}
)

type DimensionResult struct {
	Dimension Dimension `json:"dimension"`
	Score     int       `json:"score"`
	Weight    int       `json:"weight"`
	Level     Level     `json:"level"`
	Comment   string    `json:"comment"`
}

type Report struct {
	Dimensions   []DimensionResult `json:"dimensions"`
	OverallScore int               `json:"overall_score"`
	OverallLevel Level             `json:"overall_level"`
	Summary      string            `json:"summary"`
	Strengths    []string          `json:"strengths"`
	Weaknesses   []string          `json:"weaknesses"`
}

// Analyze builds the report for p. It never fails; missing fields score as the
// lowest tier of their dimension.
func Analyze(p models.Profile) *Report {
	r := &Report{
		Strengths:  []string{},
		Weaknesses: []string{},
	}

	weighted := 0
	for _, d := range dimensionOrder {
		score := scoreDimension(d, p)
		level := LevelFor(float64(score))
		r.Dimensions = append(r.Dimensions, DimensionResult{
			Dimension: d,
			Score:     score,
			Weight:    Weights[d],
			Level:     level,
			Comment:   comment(d, level, p),
		})
		weighted += score * Weights[d]

		switch level {
		case LevelExcellent, LevelGood:
			r.Strengths = append(r.Strengths, strengthText[d])
		case LevelPoor:
			r.Weaknesses = append(r.Weaknesses, weaknessText[d])
		}
	}

	r.OverallScore = int(math.Round(float64(weighted) / 100))
	r.OverallLevel = LevelFor(float64(r.OverallScore))
	r.Summary = summarise(r)
	return r
}

func scoreDimension(d Dimension, p models.Profile) int {
	switch d {
	case DimensionRevenue:
		return revenueScore.Lookup(float64(p.AnnualRevenue))
	case DimensionDebt:
		return debtScore.Lookup(p.DebtRatio())
	case DimensionCredit:
		return creditScore.Lookup(p.EffectiveCreditScore())
	case DimensionBusinessAge:
		return businessAgeScore.Lookup(float64(p.BusinessAgeYears))
	case DimensionHeadcount:
		return headcountScore.Lookup(float64(p.EmployeeCount))
	}
	return 0
}

var levelWords = map[Level]string{
	LevelExcellent: "excellent",
	LevelGood:      "good",
	LevelFair:      "fair",
	LevelPoor:      "weak",
}

var debtKinds = []string{"policy_fund", "credit_loan", "secondary_loan", "card_loan"}

func largestDebt(p models.Profile) (string, int64) {
	breakdown := p.DebtBreakdown()
	var kind string
	var amount int64
	for _, k := range debtKinds {
		if breakdown[k] > amount {
			kind, amount = k, breakdown[k]
		}
	}
	return kind, amount
}

func comment(d Dimension, level Level, p models.Profile) string {
	word := levelWords[level]
	switch d {
	case DimensionRevenue:
		if !p.HasRevenue() {
			return "No annual revenue reported."
		}
		return fmt.Sprintf("Annual revenue of %s is %s for a small business.", funds.FormatWon(p.AnnualRevenue), word)
	case DimensionDebt:
		if !p.HasRevenue() {
			return "Debt ratio cannot be assessed without revenue."
		}
		c := fmt.Sprintf("Debt ratio of %s is %s.", funds.FormatPercent(math.Round(p.DebtRatio()*10)/10), word)
		if kind, amount := largestDebt(p); amount > 0 {
			c += fmt.Sprintf(" Largest component is %s debt at %s.", strings.ReplaceAll(kind, "_", " "), funds.FormatWon(amount))
		}
		return c
	case DimensionCredit:
		return fmt.Sprintf("Credit score of %.0f is %s.", p.EffectiveCreditScore(), word)
	case DimensionBusinessAge:
		return fmt.Sprintf("%d years in operation is %s.", p.BusinessAgeYears, word)
	case DimensionHeadcount:
		return fmt.Sprintf("A team of %d employees is %s.", p.EmployeeCount, word)
	}
	return ""
}

var strengthText = map[Dimension]string{
	DimensionRevenue:     "Solid revenue base",
	DimensionDebt:        "Manageable debt load",
	DimensionCredit:      "Strong credit history",
	DimensionBusinessAge: "Established operating track record",
	DimensionHeadcount:   "Sizeable workforce",
}

var weaknessText = map[Dimension]string{
	DimensionRevenue:     "Limited revenue",
	DimensionDebt:        "High debt relative to revenue",
	DimensionCredit:      "Low credit score",
	DimensionBusinessAge: "Short operating history",
	DimensionHeadcount:   "Very small team",
}

func summarise(r *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Overall the company rates %s with %d/100.", r.OverallLevel, r.OverallScore)
	if len(r.Strengths) > 0 {
		fmt.Fprintf(&b, " Strengths: %s.", strings.ToLower(strings.Join(r.Strengths, ", ")))
	}
	if len(r.Weaknesses) > 0 {
		fmt.Fprintf(&b, " Areas to improve: %s.", strings.ToLower(strings.Join(r.Weaknesses, ", ")))
	}
	return b.String()
}
