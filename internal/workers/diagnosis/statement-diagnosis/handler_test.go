package statementdiagnosis

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyfund-workers/internal/applicant"
	perrors "policyfund-workers/internal/common/errors"
	"policyfund-workers/internal/common/logger"
	"policyfund-workers/internal/common/logger/loggertest"
	"policyfund-workers/internal/models"
	"policyfund-workers/internal/statement"
)

func createTestHandler(t *testing.T, repo *applicant.Repository) *Handler {
	return NewHandler(&Config{Timeout: 5 * time.Second}, repo, loggertest.New(t))
}

func TestHandler_Execute_InlineStatements(t *testing.T) {
	handler := createTestHandler(t, applicant.NewRepository(nil, nil, time.Minute, logger.NewNoOpLogger()))

	output, err := handler.Execute(context.Background(), &Input{Statements: []map[string]interface{}{
		{"year": 2021.0, "revenue": 1000000000.0, "net_profit": 80000000.0, "total_assets": 800000000.0, "equity": 400000000.0},
		{"year": 2022.0, "revenue": "1,200,000,000", "net_profit": 100000000.0, "total_assets": 900000000.0, "equity": 500000000.0},
		{
			"year":              2023.0,
			"revenue":           1500000000.0,
			"operating_profit":  225000000.0,
			"net_profit":        180000000.0,
			"total_assets":      1000000000.0,
			"total_liabilities": 400000000.0,
			"equity":            600000000.0,
		},
	}})
	require.NoError(t, err)

	assert.Equal(t, 3, output.Years)
	assert.Equal(t, models.GradeS, output.Grade)
	assert.Equal(t, 88, output.Score)
	assert.Equal(t, 100, output.HealthScore)
	assert.Equal(t, int64(1_640_000_000), output.MaxLoanLimit)
	assert.Len(t, output.RecommendedFunds, 6)
}

func TestHandler_Execute_SingleZeroRevenueYear(t *testing.T) {
	handler := createTestHandler(t, applicant.NewRepository(nil, nil, time.Minute, logger.NewNoOpLogger()))

	output, err := handler.Execute(context.Background(), &Input{Statements: []map[string]interface{}{
		{"year": 2023.0, "revenue": 0.0},
	}})
	require.NoError(t, err)
	assert.Zero(t, output.Ratios.Profitability)
	assert.False(t, output.Ratios.GrowthAvailable)
	assert.GreaterOrEqual(t, output.HealthScore, 0)
	assert.LessOrEqual(t, output.HealthScore, 100)
	assert.Equal(t, statement.MinLoanLimit, output.MaxLoanLimit)
}

func TestHandler_Execute_StoredStatements(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM financial_statements WHERE applicant_id = \$1`).
		WithArgs("app-3", statement.MaxYears).
		WillReturnRows(sqlmock.NewRows([]string{"fiscal_year", "revenue", "operating_profit", "net_profit", "total_assets", "total_liabilities", "equity"}).
			AddRow(2023, 600_000_000, 30_000_000, 20_000_000, 500_000_000, 300_000_000, 200_000_000))

	handler := createTestHandler(t, applicant.NewRepository(db, nil, time.Minute, logger.NewNoOpLogger()))
	output, err := handler.Execute(context.Background(), &Input{ApplicantID: "app-3"})

	require.NoError(t, err)
	assert.Equal(t, 1, output.Years)
	assert.InDelta(t, 150.0, output.Ratios.LiabilityRatio, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    *Input
		wantCode perrors.ErrorCode
	}{
		{"empty series", &Input{Statements: []map[string]interface{}{}}, perrors.ErrCodeStatementSeriesInvalid},
		{
			"four years",
			&Input{Statements: []map[string]interface{}{
				{"revenue": 1.0}, {"revenue": 1.0}, {"revenue": 1.0}, {"revenue": 1.0},
			}},
			perrors.ErrCodeStatementSeriesInvalid,
		},
		{"negative revenue", &Input{Statements: []map[string]interface{}{{"revenue": -1.0}}}, perrors.ErrCodeStatementSeriesInvalid},
		{"nothing supplied", &Input{}, perrors.ErrCodeStatementSeriesInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := createTestHandler(t, applicant.NewRepository(nil, nil, time.Minute, logger.NewNoOpLogger()))
			_, err := handler.Execute(context.Background(), tt.input)

			stdErr, ok := perrors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, stdErr.Code)
		})
	}
}
