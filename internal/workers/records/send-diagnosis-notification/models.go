package senddiagnosisnotification

import "policyfund-workers/internal/models"

type Input struct {
	ApplicantID      string                   `json:"applicantId"`
	Grade            models.Grade             `json:"grade"`
	MaxLoanLimit     int64                    `json:"maxLoanLimit"`
	RecommendedFunds []models.RecommendedFund `json:"recommendedFunds"`
	Details          string                   `json:"details"`
}

type Output = models.Notification
