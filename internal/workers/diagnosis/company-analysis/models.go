package companyanalysis

import "policyfund-workers/internal/analysis"

type Input struct {
	ApplicantID string                 `json:"applicantId,omitempty"`
	Profile     map[string]interface{} `json:"profile,omitempty"`
}

type Output struct {
	OverallScore int                        `json:"overallScore"`
	OverallLevel analysis.Level             `json:"overallLevel"`
	Summary      string                     `json:"summary"`
	Strengths    []string                   `json:"strengths"`
	Weaknesses   []string                   `json:"weaknesses"`
	Dimensions   []analysis.DimensionResult `json:"dimensions"`
}
