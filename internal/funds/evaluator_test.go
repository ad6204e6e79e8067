package funds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyfund-workers/internal/models"
)

func strongProfile() models.Profile {
	return models.Profile{
		CreditScorePrimary:         900,
		CreditScoreSecondary:       900,
		AnnualRevenue:              600_000_000,
		TotalDebt:                  100_000_000,
		HasTechnologyCertification: true,
		BusinessAgeYears:           12,
		EmployeeCount:              15,
		ApplicantAge:               45,
	}
}

func TestEvaluate_CoversWholeCatalogue(t *testing.T) {
	c := DefaultCatalogue()
	profiles := []models.Profile{{}, strongProfile(), {CreditScorePrimary: 640, AnnualRevenue: 80_000_000, ApplicantAge: 29, BusinessAgeYears: 2}}

	for _, p := range profiles {
		results := Evaluate(c, p)
		require.Len(t, results, c.Len())

		seenIneligible := false
		for _, r := range results {
			allPassed := true
			for _, cr := range r.Conditions {
				allPassed = allPassed && cr.Passed
			}
			assert.Equal(t, allPassed, r.Eligible, r.Name)
			assert.Equal(t, len(r.Conditions), r.TotalCount)

			if !r.Eligible {
				seenIneligible = true
			} else {
				assert.False(t, seenIneligible, "eligible %s sorted after an ineligible fund", r.Name)
			}
		}
	}
}

func TestEvaluate_OrdersByPassRatio(t *testing.T) {
	defs := []Definition{
		{Name: "OneOfThree", Category: CategorySpecial, MaxAmount: 1, Conditions: []Condition{EmployeesAtLeast(1), EmployeesAtLeast(50), EmployeesAtLeast(100)}},
		{Name: "Eligible", Category: CategorySpecial, MaxAmount: 1, Conditions: []Condition{EmployeesAtLeast(1)}},
		{Name: "TwoOfThree", Category: CategorySpecial, MaxAmount: 1, Conditions: []Condition{EmployeesAtLeast(1), EmployeesAtLeast(2), EmployeesAtLeast(100)}},
		{Name: "ZeroOfOne", Category: CategorySpecial, MaxAmount: 1, Conditions: []Condition{EmployeesAtLeast(100)}},
		{Name: "HalfA", Category: CategorySpecial, MaxAmount: 1, Conditions: []Condition{EmployeesAtLeast(1), EmployeesAtLeast(100)}},
		{Name: "HalfB", Category: CategorySpecial, MaxAmount: 1, Conditions: []Condition{EmployeesAtLeast(100), EmployeesAtLeast(1)}},
	}
	c, err := NewCatalogue("test", defs)
	require.NoError(t, err)

	results := Evaluate(c, models.Profile{EmployeeCount: 5})

	var order []string
	for _, r := range results {
		order = append(order, r.Name)
	}
	assert.Equal(t, []string{"Eligible", "TwoOfThree", "HalfA", "HalfB", "OneOfThree", "ZeroOfOne"}, order)
}

func TestEvaluate_YouthFundBusinessAgeCap(t *testing.T) {
	c, err := NewCatalogue("test", []Definition{{
		Name:       "Youth Startup",
		Category:   CategoryStartup,
		MaxAmount:  100_000_000,
		Conditions: []Condition{BusinessAgeAtMost(3)},
	}})
	require.NoError(t, err)

	results := Evaluate(c, models.Profile{BusinessAgeYears: 4})

	require.Len(t, results, 1)
	assert.False(t, results[0].Eligible)
	assert.Equal(t, 0, results[0].PassCount)
	assert.Equal(t, 1, results[0].TotalCount)
	assert.Equal(t, "4 years", results[0].Conditions[0].Actual)
}

func TestEvaluate_StrongProfile(t *testing.T) {
	results := Evaluate(DefaultCatalogue(), strongProfile())
	eligible := Eligible(results)

	var names []string
	for _, r := range eligible {
		names = append(names, r.Name)
	}
	assert.Contains(t, names, "Technology Growth Fund")
	assert.Contains(t, names, "Growth Leap Fund")
	assert.NotContains(t, names, "Youth Startup Fund")
	assert.NotContains(t, names, "Micro Enterprise Stabilisation Fund")

	miss, ok := ClosestMiss(results)
	require.True(t, ok)
	assert.False(t, miss.Eligible)
}

func TestEvaluate_Idempotent(t *testing.T) {
	c := DefaultCatalogue()
	p := strongProfile()
	assert.Equal(t, Evaluate(c, p), Evaluate(c, p))
}

func TestSummarise(t *testing.T) {
	results := []Result{
		{Eligible: true, PassCount: 2, TotalCount: 2},
		{PassCount: 1, TotalCount: 2},
		{PassCount: 0, TotalCount: 3},
	}
	assert.Equal(t, Summary{Total: 3, Eligible: 1, Partial: 1, None: 1}, Summarise(results))
	assert.Equal(t, 0.5, results[1].PassRatio())
	assert.Equal(t, 0.0, Result{}.PassRatio())
}
