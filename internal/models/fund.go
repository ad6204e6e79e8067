package models

// RecommendedFund carries the terms of one eligible fund downstream of a
// diagnosis, so snapshots and notifications can quote amount and rate.
type RecommendedFund struct {
	Name         string `json:"name"`
	Category     string `json:"category"`
	MaxAmount    int64  `json:"maxAmount"`
	InterestRate string `json:"interestRate"`
	Reason       string `json:"reason,omitempty"`
}
