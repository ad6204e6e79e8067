package evaluatefundeligibility

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyfund-workers/internal/applicant"
	perrors "policyfund-workers/internal/common/errors"
	"policyfund-workers/internal/common/logger"
	"policyfund-workers/internal/common/logger/loggertest"
	"policyfund-workers/internal/funds"
)

type fakeRecorder struct {
	mu       sync.Mutex
	versions []string
	counts   []int
}

func (f *fakeRecorder) RecordEvaluation(_ context.Context, version string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.versions = append(f.versions, version)
	f.counts = append(f.counts, n)
}

func strongProfile() map[string]interface{} {
	return map[string]interface{}{
		"credit_score_primary":         900.0,
		"credit_score_secondary":       900.0,
		"annual_revenue":               600000000.0,
		"total_debt":                   100000000.0,
		"has_technology_certification": true,
		"business_age_years":           12.0,
		"employee_count":               15.0,
		"applicant_age":                45.0,
	}
}

func createTestHandler(t *testing.T, repo *applicant.Repository, rec EvaluationRecorder) *Handler {
	return NewHandler(&Config{Timeout: 5 * time.Second}, funds.NewStore(funds.DefaultCatalogue()), repo, rec, loggertest.New(t))
}

func TestHandler_Execute_FullBreakdown(t *testing.T) {
	rec := &fakeRecorder{}
	handler := createTestHandler(t, applicant.NewRepository(nil, nil, time.Minute, logger.NewNoOpLogger()), rec)

	output, err := handler.Execute(context.Background(), &Input{Profile: strongProfile()})
	require.NoError(t, err)

	assert.Len(t, output.Evaluations, 9)
	assert.Equal(t, funds.Summary{Total: 9, Eligible: 7, Partial: 1, None: 1}, output.Summary)
	assert.Len(t, output.EligibleFunds, 7)
	require.NotNil(t, output.ClosestMiss)
	assert.Equal(t, "Micro Enterprise Stabilisation Fund", output.ClosestMiss.Name)
	assert.Equal(t, "Youth Startup Fund", output.Evaluations[8].Name)

	for i, r := range output.Evaluations {
		if i < 7 {
			assert.True(t, r.Eligible, r.Name)
		} else {
			assert.False(t, r.Eligible, r.Name)
		}
		assert.Len(t, r.Conditions, r.TotalCount)
	}

	assert.Equal(t, []string{funds.DefaultVersion}, rec.versions)
	assert.Equal(t, []int{9}, rec.counts)
}

func TestHandler_Execute_CategoryFilter(t *testing.T) {
	handler := createTestHandler(t, applicant.NewRepository(nil, nil, time.Minute, logger.NewNoOpLogger()), nil)

	output, err := handler.Execute(context.Background(), &Input{
		Profile:    strongProfile(),
		Categories: []string{"guarantee"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"KODIT Credit Guarantee", "KIBO Technology Guarantee"}, output.EligibleFunds)
	assert.Nil(t, output.ClosestMiss)

	_, err = handler.Execute(context.Background(), &Input{Profile: strongProfile(), Categories: []string{"crypto"}})
	stdErr, ok := perrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, perrors.ErrCodeProfileValidationFailed, stdErr.Code)
}

func TestHandler_Execute_StoredApplicant(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM applicants WHERE id = \$1`).
		WithArgs("app-7").
		WillReturnRows(sqlmock.NewRows([]string{
			"credit_score_primary", "credit_score_secondary", "annual_revenue", "total_debt",
			"policy_fund_debt", "credit_loan_debt", "secondary_loan_debt", "card_loan_debt",
			"has_technology_certification", "business_age_years", "employee_count", "applicant_age",
		}).AddRow(0, 0, 0, 0, 0, 0, 0, 0, false, 0, 0, 0))

	handler := createTestHandler(t, applicant.NewRepository(db, nil, time.Minute, logger.NewNoOpLogger()), nil)
	output, err := handler.Execute(context.Background(), &Input{ApplicantID: "app-7"})

	require.NoError(t, err)
	assert.Empty(t, output.EligibleFunds)
	assert.NotNil(t, output.EligibleFunds)
	assert.Equal(t, 0, output.Summary.Eligible)
	assert.NoError(t, mock.ExpectationsWereMet())
}
