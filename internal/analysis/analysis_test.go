package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyfund-workers/internal/models"
)

func TestWeightsSumToHundred(t *testing.T) {
	total := 0
	for _, w := range Weights {
		total += w
	}
	assert.Equal(t, 100, total)
}

func TestAnalyze_StrongCompany(t *testing.T) {
	r := Analyze(models.Profile{
		CreditScorePrimary:         900,
		CreditScoreSecondary:       900,
		AnnualRevenue:              600_000_000,
		TotalDebt:                  100_000_000,
		HasTechnologyCertification: true,
		BusinessAgeYears:           12,
		EmployeeCount:              15,
	})

	require.Len(t, r.Dimensions, 5)
	scores := map[Dimension]int{}
	for _, d := range r.Dimensions {
		scores[d.Dimension] = d.Score
	}
	assert.Equal(t, map[Dimension]int{
		DimensionRevenue:     80,
		DimensionDebt:        100,
		DimensionCredit:      100,
		DimensionBusinessAge: 100,
		DimensionHeadcount:   70,
	}, scores)

	assert.Equal(t, 92, r.OverallScore)
	assert.Equal(t, LevelExcellent, r.OverallLevel)
	assert.Len(t, r.Strengths, 5)
	assert.Empty(t, r.Weaknesses)
	assert.Contains(t, r.Summary, "rates excellent with 92/100")
	assert.Contains(t, r.Dimensions[1].Comment, "16.7%")
	assert.NotContains(t, r.Summary, "Areas to improve")
}

func TestAnalyze_EmptyProfile(t *testing.T) {
	r := Analyze(models.Profile{})

	assert.Equal(t, 16, r.OverallScore)
	assert.Equal(t, LevelPoor, r.OverallLevel)
	assert.Empty(t, r.Strengths)
	assert.Len(t, r.Weaknesses, 5)
	assert.Equal(t, "No annual revenue reported.", r.Dimensions[0].Comment)
	assert.Equal(t, "Debt ratio cannot be assessed without revenue.", r.Dimensions[1].Comment)
	assert.Contains(t, r.Summary, "Areas to improve: limited revenue")
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		score float64
		want  Level
	}{
		{100, LevelExcellent},
		{80, LevelExcellent},
		{79.9, LevelGood},
		{60, LevelGood},
		{40, LevelFair},
		{39, LevelPoor},
		{0, LevelPoor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFor(tt.score), "score %.1f", tt.score)
	}
}

func TestAnalyze_ScoresStayInRange(t *testing.T) {
	profiles := []models.Profile{
		{},
		{AnnualRevenue: 1, TotalDebt: 1_000_000_000},
		{CreditScorePrimary: 1000, AnnualRevenue: 50_000_000_000, BusinessAgeYears: 40, EmployeeCount: 300},
	}
	for _, p := range profiles {
		r := Analyze(p)
		assert.GreaterOrEqual(t, r.OverallScore, 0)
		assert.LessOrEqual(t, r.OverallScore, 100)
		for _, d := range r.Dimensions {
			assert.GreaterOrEqual(t, d.Score, 0)
			assert.LessOrEqual(t, d.Score, 100)
			assert.Equal(t, LevelFor(float64(d.Score)), d.Level)
		}
	}
}

func TestAnalyze_DebtCommentNamesLargestComponent(t *testing.T) {
	tests := []struct {
		name    string
		profile models.Profile
		want    string
	}{
		{
			name: "card loan largest",
			profile: models.Profile{
				AnnualRevenue:  200_000_000,
				TotalDebt:      300_000_000,
				PolicyFundDebt: 100_000_000,
				CardLoanDebt:   200_000_000,
			},
			want: "Debt ratio of 150% is good. Largest component is card loan debt at 200,000,000 KRW.",
		},
		{
			name:    "no components",
			profile: models.Profile{AnnualRevenue: 200_000_000, TotalDebt: 300_000_000},
			want:    "Debt ratio of 150% is good.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Analyze(tt.profile)
			assert.Equal(t, tt.want, r.Dimensions[1].Comment)
		})
	}
}
