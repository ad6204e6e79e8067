package sohodiagnosis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyfund-workers/internal/applicant"
	perrors "policyfund-workers/internal/common/errors"
	"policyfund-workers/internal/common/logger/loggertest"
	"policyfund-workers/internal/funds"
	"policyfund-workers/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout:      5 * time.Second,
		CacheEnabled: true,
		CacheTTL:     time.Hour,
	}
}

func scenarioAFields() map[string]interface{} {
	return map[string]interface{}{
		"credit_score_primary":         900.0,
		"credit_score_secondary":       900.0,
		"annual_revenue":               "600,000,000",
		"total_debt":                   100000000.0,
		"has_technology_certification": true,
		"business_age_years":           12.0,
		"employee_count":               15.0,
		"applicant_age":                45.0,
	}
}

func createTestHandler(t *testing.T, store *funds.Store, rdb *redis.Client) *Handler {
	log := loggertest.New(t)
	repo := applicant.NewRepository(nil, nil, time.Minute, log)
	return NewHandler(createTestConfig(), store, repo, rdb, log)
}

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_ScenarioA(t *testing.T) {
	_, rdb := setupMiniredis(t)
	handler := createTestHandler(t, funds.NewStore(funds.DefaultCatalogue()), rdb)

	output, err := handler.Execute(context.Background(), &Input{Profile: scenarioAFields()})
	require.NoError(t, err)

	assert.Equal(t, models.GradeS, output.Grade)
	assert.Equal(t, 99, output.Score)
	assert.Equal(t, int64(950_000_000), output.MaxLoanLimit)
	assert.Equal(t, funds.DefaultVersion, output.CatalogueVersion)
	assert.Contains(t, output.RecommendedFunds, models.RecommendedFund{
		Name:         "Growth Leap Fund",
		Category:     "facility",
		MaxAmount:    1_000_000_000,
		InterestRate: "2.7% variable",
	})
	assert.Contains(t, output.RecommendedFunds, models.RecommendedFund{
		Name:         "SEMAS General Operating Fund",
		Category:     "operating",
		MaxAmount:    70_000_000,
		InterestRate: "3.0% (policy rate linked)",
	})
	assert.Contains(t, output.Details, "SOHO grade S")
	assert.False(t, output.Cached)
}

func TestHandler_Execute_LegacyFieldNamesMatchCanonical(t *testing.T) {
	handler := createTestHandler(t, funds.NewStore(funds.DefaultCatalogue()), nil)

	canonical, err := handler.Execute(context.Background(), &Input{Profile: scenarioAFields()})
	require.NoError(t, err)

	legacy, err := handler.Execute(context.Background(), &Input{Profile: map[string]interface{}{
		"nice_score":     900.0,
		"kcb_score":      900.0,
		"revenue":        600000000.0,
		"debt":           100000000.0,
		"has_tech_cert":  "Y",
		"business_years": 12.0,
		"employees":      15.0,
		"age":            45.0,
	}})
	require.NoError(t, err)
	assert.Equal(t, canonical, legacy)
}

func TestHandler_Execute_CachesByCatalogueVersion(t *testing.T) {
	mr, rdb := setupMiniredis(t)
	store := funds.NewStore(funds.DefaultCatalogue())
	handler := createTestHandler(t, store, rdb)
	ctx := context.Background()

	first, err := handler.Execute(ctx, &Input{Profile: scenarioAFields()})
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := handler.Execute(ctx, &Input{Profile: scenarioAFields()})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Grade, second.Grade)
	assert.Equal(t, first.MaxLoanLimit, second.MaxLoanLimit)

	key := CacheKey(funds.DefaultVersion, models.ProfileFromFields(scenarioAFields()))
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Hour, mr.TTL(key))

	reloaded, err := funds.NewCatalogue("2024.2", funds.DefaultDefinitions())
	require.NoError(t, err)
	store.Swap(reloaded)

	third, err := handler.Execute(ctx, &Input{Profile: scenarioAFields()})
	require.NoError(t, err)
	assert.False(t, third.Cached)
	assert.Equal(t, "2024.2", third.CatalogueVersion)
}

func TestHandler_Execute_CacheFailureIsNotFatal(t *testing.T) {
	mr, rdb := setupMiniredis(t)
	mr.Close()

	handler := createTestHandler(t, funds.NewStore(funds.DefaultCatalogue()), rdb)
	output, err := handler.Execute(context.Background(), &Input{Profile: scenarioAFields()})

	require.NoError(t, err)
	assert.Equal(t, models.GradeS, output.Grade)
	assert.False(t, output.Cached)
}

func TestHandler_Execute_CacheDisabledSkipsRedis(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	p := models.ProfileFromFields(scenarioAFields())
	redisMock.ExpectGet(CacheKey(funds.DefaultVersion, p)).RedisNil()

	cfg := createTestConfig()
	cfg.CacheEnabled = false
	log := loggertest.New(t)
	handler := NewHandler(cfg, funds.NewStore(funds.DefaultCatalogue()), applicant.NewRepository(nil, nil, time.Minute, log), rdb, log)

	_, err := handler.Execute(context.Background(), &Input{Profile: scenarioAFields()})
	require.NoError(t, err)
	assert.Error(t, redisMock.ExpectationsWereMet())
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		store    *funds.Store
		input    *Input
		wantCode perrors.ErrorCode
	}{
		{
			name:     "negative revenue",
			store:    funds.NewStore(funds.DefaultCatalogue()),
			input:    &Input{Profile: map[string]interface{}{"annual_revenue": -5.0}},
			wantCode: perrors.ErrCodeProfileValidationFailed,
		},
		{
			name:     "non numeric credit score",
			store:    funds.NewStore(funds.DefaultCatalogue()),
			input:    &Input{Profile: map[string]interface{}{"credit_score_primary": "excellent"}},
			wantCode: perrors.ErrCodeProfileValidationFailed,
		},
		{
			name:     "no profile and no applicant",
			store:    funds.NewStore(funds.DefaultCatalogue()),
			input:    &Input{},
			wantCode: perrors.ErrCodeProfileValidationFailed,
		},
		{
			name:     "no catalogue loaded",
			store:    funds.NewStore(nil),
			input:    &Input{Profile: scenarioAFields()},
			wantCode: perrors.ErrCodeCatalogueUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := createTestHandler(t, tt.store, nil)
			output, err := handler.Execute(context.Background(), tt.input)

			assert.Nil(t, output)
			stdErr, ok := perrors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, stdErr.Code)
		})
	}
}

func TestCacheKey_StableAndDistinct(t *testing.T) {
	p := models.ProfileFromFields(scenarioAFields())
	assert.Equal(t, CacheKey("v1", p), CacheKey("v1", p))
	assert.NotEqual(t, CacheKey("v1", p), CacheKey("v2", p))

	p.EmployeeCount++
	assert.NotEqual(t, CacheKey("v1", models.ProfileFromFields(scenarioAFields())), CacheKey("v1", p))
}
