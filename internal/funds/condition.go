package funds

import (
	"fmt"
	"math"
	"strconv"

	"github.com/dustin/go-humanize"

	"policyfund-workers/internal/models"
)

// ConditionType is the catalogue file key of a condition constructor.
type ConditionType string

const (
	MinCreditScore     ConditionType = "min_credit_score"
	MaxDebtRatio       ConditionType = "max_debt_ratio"
	MinRevenue         ConditionType = "min_revenue"
	MaxRevenue         ConditionType = "max_revenue"
	MinBusinessAge     ConditionType = "min_business_age"
	MaxBusinessAge     ConditionType = "max_business_age"
	MaxApplicantAge    ConditionType = "max_applicant_age"
	RequiresTechnology ConditionType = "requires_technology"
	MinEmployees       ConditionType = "min_employees"
)

// Condition is one named predicate of a fund. Evaluate returns pass/fail and
// the applicant's value rendered for display.
type Condition struct {
	Type      ConditionType
	Label     string
	Required  string
	Threshold float64
	Evaluate  func(p models.Profile) (bool, string)
}

type conditionBuilder struct {
	needsValue bool
	// integral thresholds are truncated by their constructor, so fractions
	// are rejected before building.
	integral bool
	build    func(v float64) Condition
}

// maxIntegralThreshold keeps integer thresholds inside the amount range
// profiles accept.
const maxIntegralThreshold = 1e15

var conditionBuilders = map[ConditionType]conditionBuilder{
	MinCreditScore:     {true, true, func(v float64) Condition { return CreditScoreAtLeast(int(v)) }},
	MaxDebtRatio:       {true, false, DebtRatioAtMost},
	MinRevenue:         {true, true, func(v float64) Condition { return RevenueAtLeast(int64(v)) }},
	MaxRevenue:         {true, true, func(v float64) Condition { return RevenueAtMost(int64(v)) }},
	MinBusinessAge:     {true, true, func(v float64) Condition { return BusinessAgeAtLeast(int(v)) }},
	MaxBusinessAge:     {true, true, func(v float64) Condition { return BusinessAgeAtMost(int(v)) }},
	MaxApplicantAge:    {true, true, func(v float64) Condition { return ApplicantAgeAtMost(int(v)) }},
	RequiresTechnology: {false, false, func(float64) Condition { return TechnologyCertified() }},
	MinEmployees:       {true, true, func(v float64) Condition { return EmployeesAtLeast(int(v)) }},
}

// ConditionTypes lists every type the catalogue file may use.
func ConditionTypes() []ConditionType {
	return []ConditionType{
		MinCreditScore, MaxDebtRatio, MinRevenue, MaxRevenue, MinBusinessAge,
		MaxBusinessAge, MaxApplicantAge, RequiresTechnology, MinEmployees,
	}
}

// BuildCondition constructs a condition by type. value is ignored by types
// that take no threshold and required by the rest.
func BuildCondition(t ConditionType, value *float64) (Condition, error) {
	b, ok := conditionBuilders[t]
	if !ok {
		return Condition{}, fmt.Errorf("unknown condition type %q", t)
	}
	if !b.needsValue {
		return b.build(0), nil
	}
	if value == nil {
		return Condition{}, fmt.Errorf("condition %q requires a value", t)
	}
	if *value < 0 || math.IsNaN(*value) || math.IsInf(*value, 0) {
		return Condition{}, fmt.Errorf("condition %q has invalid value %v", t, *value)
	}
	if b.integral && (*value != math.Trunc(*value) || *value > maxIntegralThreshold) {
		return Condition{}, fmt.Errorf("condition %q requires a whole number up to 10^15, got %v", t, *value)
	}
	return b.build(*value), nil
}

func CreditScoreAtLeast(floor int) Condition {
	return Condition{
		Type:      MinCreditScore,
		Label:     "Credit score",
		Required:  fmt.Sprintf(">= %d", floor),
		Threshold: float64(floor),
		Evaluate: func(p models.Profile) (bool, string) {
			score := p.EffectiveCreditScore()
			return score >= float64(floor), formatScore(score)
		},
	}
}

// DebtRatioAtMost compares the numeric ratio; an applicant without revenue fails.
func DebtRatioAtMost(maxPercent float64) Condition {
	return Condition{
		Type:      MaxDebtRatio,
		Label:     "Debt ratio",
		Required:  "<= " + FormatPercent(maxPercent),
		Threshold: maxPercent,
		Evaluate: func(p models.Profile) (bool, string) {
			if !p.HasRevenue() {
				return false, "n/a (no revenue)"
			}
			ratio := p.DebtRatio()
			return ratio <= maxPercent, FormatPercent(ratio)
		},
	}
}

func RevenueAtLeast(floor int64) Condition {
	return Condition{
		Type:      MinRevenue,
		Label:     "Annual revenue",
		Required:  ">= " + FormatWon(floor),
		Threshold: float64(floor),
		Evaluate: func(p models.Profile) (bool, string) {
			return p.AnnualRevenue >= floor, FormatWon(p.AnnualRevenue)
		},
	}
}

func RevenueAtMost(ceiling int64) Condition {
	return Condition{
		Type:      MaxRevenue,
		Label:     "Annual revenue",
		Required:  "<= " + FormatWon(ceiling),
		Threshold: float64(ceiling),
		Evaluate: func(p models.Profile) (bool, string) {
			return p.AnnualRevenue <= ceiling, FormatWon(p.AnnualRevenue)
		},
	}
}

func BusinessAgeAtLeast(years int) Condition {
	return Condition{
		Type:      MinBusinessAge,
		Label:     "Years in business",
		Required:  fmt.Sprintf(">= %d years", years),
		Threshold: float64(years),
		Evaluate: func(p models.Profile) (bool, string) {
			return p.BusinessAgeYears >= years, formatYears(p.BusinessAgeYears)
		},
	}
}

func BusinessAgeAtMost(years int) Condition {
	return Condition{
		Type:      MaxBusinessAge,
		Label:     "Years in business",
		Required:  fmt.Sprintf("<= %d years", years),
		Threshold: float64(years),
		Evaluate: func(p models.Profile) (bool, string) {
			return p.BusinessAgeYears <= years, formatYears(p.BusinessAgeYears)
		},
	}
}

// ApplicantAgeAtMost fails when the age was not supplied.
func ApplicantAgeAtMost(age int) Condition {
	return Condition{
		Type:      MaxApplicantAge,
		Label:     "Applicant age",
		Required:  fmt.Sprintf("<= %d", age),
		Threshold: float64(age),
		Evaluate: func(p models.Profile) (bool, string) {
			if p.ApplicantAge <= 0 {
				return false, "not supplied"
			}
			return p.ApplicantAge <= age, strconv.Itoa(p.ApplicantAge)
		},
	}
}

func TechnologyCertified() Condition {
	return Condition{
		Type:     RequiresTechnology,
		Label:    "Technology certification",
		Required: "certified",
		Evaluate: func(p models.Profile) (bool, string) {
			if p.HasTechnologyCertification {
				return true, "certified"
			}
			return false, "not certified"
		},
	}
}

func EmployeesAtLeast(n int) Condition {
	return Condition{
		Type:      MinEmployees,
		Label:     "Employees",
		Required:  fmt.Sprintf(">= %d", n),
		Threshold: float64(n),
		Evaluate: func(p models.Profile) (bool, string) {
			return p.EmployeeCount >= n, strconv.Itoa(p.EmployeeCount)
		},
	}
}

// FormatWon renders a currency amount with thousands separators.
func FormatWon(v int64) string {
	return humanize.Comma(v) + " KRW"
}

// FormatPercent renders whole percentages without decimals and everything
// else with one.
func FormatPercent(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f%%", v)
	}
	return fmt.Sprintf("%.1f%%", v)
}

func formatScore(v float64) string {
	if v == math.Trunc(v) {
		return strconv.Itoa(int(v))
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func formatYears(y int) string {
	if y == 1 {
		return "1 year"
	}
	return fmt.Sprintf("%d years", y)
}
