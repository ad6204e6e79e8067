package models

import "time"

const (
	VariantPointInTime = "point_in_time"
	VariantStatement   = "statement"
)

// DiagnosisSnapshot is the audit copy of a diagnosis bundle. It is written
// once and never treated as the source of a grade; grades are recomputed
// from the profile.
type DiagnosisSnapshot struct {
	ID               string                 `json:"id"`
	ApplicantID      string                 `json:"applicantId"`
	Variant          string                 `json:"variant"`
	Grade            Grade                  `json:"grade"`
	MaxLoanLimit     int64                  `json:"maxLoanLimit"`
	RecommendedFunds []RecommendedFund      `json:"recommendedFunds"`
	Narrative        string                 `json:"narrative"`
	CatalogueVersion string                 `json:"catalogueVersion,omitempty"`
	Inputs           map[string]interface{} `json:"inputs,omitempty"`
	CreatedAt        time.Time              `json:"createdAt"`
}
