package sohodiagnosis

import "policyfund-workers/internal/models"

// Input carries either the applicant's profile fields, in either naming
// convention, or an applicantId to load them from storage.
type Input struct {
	ApplicantID string                 `json:"applicantId,omitempty"`
	Profile     map[string]interface{} `json:"profile,omitempty"`
}

type Output struct {
	Grade            models.Grade             `json:"grade"`
	Score            int                      `json:"score"`
	MaxLoanLimit     int64                    `json:"maxLoanLimit"`
	RecommendedFunds []models.RecommendedFund `json:"recommendedFunds"`
	Details          string                   `json:"details"`
	CatalogueVersion string                   `json:"catalogueVersion"`
	Cached           bool                     `json:"cached"`
}
