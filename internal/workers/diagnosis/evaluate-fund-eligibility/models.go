package evaluatefundeligibility

import "policyfund-workers/internal/funds"

type Input struct {
	ApplicantID string                 `json:"applicantId,omitempty"`
	Profile     map[string]interface{} `json:"profile,omitempty"`
	// Categories narrows the output to these fund categories. Empty means all.
	Categories []string `json:"categories,omitempty"`
}

type Output struct {
	Evaluations      []funds.Result `json:"evaluations"`
	EligibleFunds    []string       `json:"eligibleFunds"`
	ClosestMiss      *funds.Result  `json:"closestMiss,omitempty"`
	Summary          funds.Summary  `json:"summary"`
	CatalogueVersion string         `json:"catalogueVersion"`
}
