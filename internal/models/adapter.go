package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// fieldAliases maps each canonical field to its legacy short name.
var fieldAliases = map[string]string{
	"credit_score_primary":         "nice_score",
	"credit_score_secondary":       "kcb_score",
	"annual_revenue":               "revenue",
	"total_debt":                   "debt",
	"policy_fund_debt":             "debt_policy_fund",
	"credit_loan_debt":             "debt_credit_loan",
	"secondary_loan_debt":          "debt_secondary_loan",
	"card_loan_debt":               "debt_card_loan",
	"has_technology_certification": "has_tech_cert",
	"business_age_years":           "business_years",
	"employee_count":               "employees",
	"applicant_age":                "age",
}

// ProfileFromFields builds a Profile from decoded applicant fields using either
// naming convention. The canonical name wins when both are present. Missing or
// unparseable values become zero.
func ProfileFromFields(fields map[string]interface{}) Profile {
	get := func(canonical string) interface{} {
		if v, ok := fields[canonical]; ok && v != nil {
			return v
		}
		return fields[fieldAliases[canonical]]
	}

	return Profile{
		CreditScorePrimary:         int(ParseAmount(get("credit_score_primary"))),
		CreditScoreSecondary:       int(ParseAmount(get("credit_score_secondary"))),
		AnnualRevenue:              ParseAmount(get("annual_revenue")),
		TotalDebt:                  ParseAmount(get("total_debt")),
		PolicyFundDebt:             ParseAmount(get("policy_fund_debt")),
		CreditLoanDebt:             ParseAmount(get("credit_loan_debt")),
		SecondaryLoanDebt:          ParseAmount(get("secondary_loan_debt")),
		CardLoanDebt:               ParseAmount(get("card_loan_debt")),
		HasTechnologyCertification: ParseFlag(get("has_technology_certification")),
		BusinessAgeYears:           int(ParseAmount(get("business_age_years"))),
		EmployeeCount:              int(ParseAmount(get("employee_count"))),
		ApplicantAge:               int(ParseAmount(get("applicant_age"))),
	}
}

// Fields renders p with canonical names, the inverse of ProfileFromFields.
func (p Profile) Fields() map[string]interface{} {
	return map[string]interface{}{
		"credit_score_primary":         p.CreditScorePrimary,
		"credit_score_secondary":       p.CreditScoreSecondary,
		"annual_revenue":               p.AnnualRevenue,
		"total_debt":                   p.TotalDebt,
		"policy_fund_debt":             p.PolicyFundDebt,
		"credit_loan_debt":             p.CreditLoanDebt,
		"secondary_loan_debt":          p.SecondaryLoanDebt,
		"card_loan_debt":               p.CardLoanDebt,
		"has_technology_certification": p.HasTechnologyCertification,
		"business_age_years":           p.BusinessAgeYears,
		"employee_count":               p.EmployeeCount,
		"applicant_age":                p.ApplicantAge,
	}
}

// ParseAmount reads a whole currency amount or count from a decoded JSON value.
// Strings may carry thousands separators. Fractions are rounded.
func ParseAmount(raw interface{}) int64 {
	switch v := raw.(type) {
	case float64:
		return roundToInt64(v)
	case float32:
		return roundToInt64(float64(v))
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		f, _ := v.Float64()
		return roundToInt64(f)
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
		if s == "" {
			return 0
		}
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return roundToInt64(f)
	default:
		return 0
	}
}

// ParseFlag reads a boolean that may arrive as bool, number, or a
// true/yes/Y style string.
func ParseFlag(raw interface{}) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case int:
		return v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "y", "yes", "1":
			return true
		}
	}
	return false
}

func roundToInt64(f float64) int64 {
	if math.IsNaN(f) {
		return 0
	}
	f = math.Round(f)
	switch {
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}
