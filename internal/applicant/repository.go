// Package applicant loads stored applicant data for workers that receive only
// an applicant id. Profiles are cached in Redis; statements are read straight
// from Postgres.
package applicant

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"policyfund-workers/internal/common/logger"
	"policyfund-workers/internal/models"
)

var ErrNotFound = errors.New("APPLICANT_NOT_FOUND")

const profileQuery = `SELECT credit_score_primary, credit_score_secondary, annual_revenue, total_debt,
	COALESCE(policy_fund_debt, 0), COALESCE(credit_loan_debt, 0), COALESCE(secondary_loan_debt, 0), COALESCE(card_loan_debt, 0),
	has_technology_certification, business_age_years, employee_count, COALESCE(applicant_age, 0)
	FROM applicants WHERE id = $1`

const statementsQuery = `SELECT fiscal_year, revenue, operating_profit, net_profit, total_assets, total_liabilities, equity
	FROM financial_statements WHERE applicant_id = $1
	ORDER BY fiscal_year DESC LIMIT $2`

type Repository struct {
	db     *sql.DB
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// NewRepository returns a repository. rdb may be nil to disable caching.
func NewRepository(db *sql.DB, rdb *redis.Client, ttl time.Duration, log logger.Logger) *Repository {
	return &Repository{db: db, redis: rdb, ttl: ttl, logger: log}
}

func ProfileCacheKey(applicantID string) string {
	return "applicant:profile:" + applicantID
}

// Profile returns the stored profile of applicantID.
func (r *Repository) Profile(ctx context.Context, applicantID string) (models.Profile, error) {
	key := ProfileCacheKey(applicantID)
	if r.redis != nil {
		val, err := r.redis.Get(ctx, key).Result()
		switch {
		case err == nil:
			var p models.Profile
			if err := json.Unmarshal([]byte(val), &p); err == nil {
				return p, nil
			}
		case !errors.Is(err, redis.Nil):
			r.logger.Warn("profile cache read failed", map[string]interface{}{
				"applicantId": applicantID,
				"error":       err,
			})
		}
	}

	var p models.Profile
	err := r.db.QueryRowContext(ctx, profileQuery, applicantID).Scan(
		&p.CreditScorePrimary,
		&p.CreditScoreSecondary,
		&p.AnnualRevenue,
		&p.TotalDebt,
		&p.PolicyFundDebt,
		&p.CreditLoanDebt,
		&p.SecondaryLoanDebt,
		&p.CardLoanDebt,
		&p.HasTechnologyCertification,
		&p.BusinessAgeYears,
		&p.EmployeeCount,
		&p.ApplicantAge,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, fmt.Errorf("%w: %s", ErrNotFound, applicantID)
	}
	if err != nil {
		return models.Profile{}, fmt.Errorf("query applicant %s: %w", applicantID, err)
	}

	if r.redis != nil {
		data, _ := json.Marshal(p)
		if err := r.redis.Set(ctx, key, data, r.ttl).Err(); err != nil {
			r.logger.Warn("profile cache write failed", map[string]interface{}{
				"applicantId": applicantID,
				"error":       err,
			})
		}
	}
	return p, nil
}

// Statements returns up to limit of the applicant's most recent statements,
// oldest first.
func (r *Repository) Statements(ctx context.Context, applicantID string, limit int) ([]models.FinancialStatement, error) {
	rows, err := r.db.QueryContext(ctx, statementsQuery, applicantID, limit)
	if err != nil {
		return nil, fmt.Errorf("query statements %s: %w", applicantID, err)
	}
	defer rows.Close()

	var series []models.FinancialStatement
	for rows.Next() {
		var s models.FinancialStatement
		if err := rows.Scan(&s.Year, &s.Revenue, &s.OperatingProfit, &s.NetProfit, &s.TotalAssets, &s.TotalLiabilities, &s.Equity); err != nil {
			return nil, fmt.Errorf("scan statement: %w", err)
		}
		series = append(series, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate statements: %w", err)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: no statements for %s", ErrNotFound, applicantID)
	}

	for i, j := 0, len(series)-1; i < j; i, j = i+1, j-1 {
		series[i], series[j] = series[j], series[i]
	}
	return series, nil
}
