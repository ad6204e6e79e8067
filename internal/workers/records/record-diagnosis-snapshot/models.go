package recorddiagnosissnapshot

import "policyfund-workers/internal/models"

// Input is the bundle produced by soho-diagnosis or statement-diagnosis plus
// the variables that identify the applicant.
type Input struct {
	ApplicantID      string                   `json:"applicantId"`
	Variant          string                   `json:"variant"`
	Grade            models.Grade             `json:"grade"`
	MaxLoanLimit     int64                    `json:"maxLoanLimit"`
	RecommendedFunds []models.RecommendedFund `json:"recommendedFunds"`
	Details          string                   `json:"details"`
	CatalogueVersion string                   `json:"catalogueVersion,omitempty"`
	Inputs           map[string]interface{}   `json:"inputs,omitempty"`
}

type Output struct {
	SnapshotID string `json:"snapshotId"`
	CreatedAt  string `json:"createdAt"`
	Indexed    bool   `json:"indexed"`
}
