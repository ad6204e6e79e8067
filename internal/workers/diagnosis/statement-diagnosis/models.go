package statementdiagnosis

import (
	"policyfund-workers/internal/models"
	"policyfund-workers/internal/statement"
)

// Input carries up to three yearly statements, oldest first, or an
// applicantId whose stored statements are used instead.
type Input struct {
	ApplicantID string                   `json:"applicantId,omitempty"`
	Statements  []map[string]interface{} `json:"statements,omitempty"`
}

type Output struct {
	Grade            models.Grade             `json:"grade"`
	Score            int                      `json:"score"`
	HealthScore      int                      `json:"healthScore"`
	MaxLoanLimit     int64                    `json:"maxLoanLimit"`
	Ratios           statement.Ratios         `json:"ratios"`
	RecommendedFunds []models.RecommendedFund `json:"recommendedFunds"`
	Years            int                      `json:"years"`
}
