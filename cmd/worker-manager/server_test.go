package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyfund-workers/internal/common/config"
	"policyfund-workers/internal/common/logger"
	"policyfund-workers/internal/common/logger/loggertest"
	"policyfund-workers/internal/common/metrics"
	"policyfund-workers/internal/funds"
)

func TestHealthEndpoint(t *testing.T) {
	mux := newHealthMux(&readiness{logger: logger.NewNoOpLogger()})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestReadyEndpoint(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	tests := []struct {
		name       string
		ready      *readiness
		wantStatus int
		wantChecks map[string]string
	}{
		{
			name: "all dependencies up",
			ready:      newReadiness(nil, rdb, nil, funds.NewStore(funds.DefaultCatalogue()), logger.NewNoOpLogger()),
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{"catalogue": "ok", "redis": "ok"},
		},
		{
			name:       "no catalogue",
			ready:      newReadiness(nil, nil, nil, funds.NewStore(nil), logger.NewNoOpLogger()),
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"catalogue": "no catalogue loaded"},
		},
		{
			name: "failing check",
			ready: &readiness{
				store: funds.NewStore(funds.DefaultCatalogue()),
				checks: map[string]check{
					"postgres": func(context.Context) error { return errors.New("connection refused") },
				},
			},
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"postgres": "connection refused"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.ready.logger = loggertest.New(t)
			rec := httptest.NewRecorder()
			newHealthMux(tt.ready).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body struct {
				Status string            `json:"status"`
				Checks map[string]string `json:"checks"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantChecks, body.Checks)
		})
	}
}

func TestReadyEndpoint_ReportsCatalogueVersion(t *testing.T) {
	ready := newReadiness(nil, nil, nil, funds.NewStore(funds.DefaultCatalogue()), logger.NewNoOpLogger())
	rec := httptest.NewRecorder()
	newHealthMux(ready).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Contains(t, rec.Body.String(), `"catalogueVersion":"`+funds.DefaultVersion+`"`)
}

func TestReadyEndpoint_ConcurrentRequests(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	mux := newHealthMux(newReadiness(nil, rdb, nil, funds.NewStore(funds.DefaultCatalogue()), loggertest.New(t)))

	const workers = 8
	codes := make([]int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()

	for i, code := range codes {
		assert.Equal(t, http.StatusOK, code, "request %d", i)
	}
}

func TestReloadCatalogue(t *testing.T) {
	store := funds.NewStore(funds.DefaultCatalogue())
	log := loggertest.New(t)

	t.Run("disabled leaves catalogue", func(t *testing.T) {
		reloadCatalogue(store, config.CatalogueConfig{Path: "configs/funds.yaml"}, log)
		assert.Equal(t, funds.DefaultVersion, store.Load().Version())
	})

	t.Run("bad file keeps active catalogue", func(t *testing.T) {
		before := testutil.ToFloat64(metrics.CatalogueReloads.WithLabelValues("failed"))
		reloadCatalogue(store, config.CatalogueConfig{Path: "does-not-exist.yaml", ReloadSignal: true}, log)
		assert.Equal(t, funds.DefaultVersion, store.Load().Version())
		assert.Equal(t, before+1, testutil.ToFloat64(metrics.CatalogueReloads.WithLabelValues("failed")))
	})

	t.Run("valid file swaps catalogue", func(t *testing.T) {
		before := testutil.ToFloat64(metrics.CatalogueReloads.WithLabelValues("ok"))
		reloadCatalogue(store, config.CatalogueConfig{Path: "../../configs/funds.yaml", ReloadSignal: true}, log)
		assert.Equal(t, before+1, testutil.ToFloat64(metrics.CatalogueReloads.WithLabelValues("ok")))
		assert.NotNil(t, store.Load())
	})
}

func TestLoadCatalogue_Builtin(t *testing.T) {
	store, err := loadCatalogue(config.CatalogueConfig{}, logger.NewNoOpLogger())
	require.NoError(t, err)
	assert.Equal(t, 9, store.Load().Len())

	_, err = loadCatalogue(config.CatalogueConfig{Path: "missing.yaml"}, logger.NewNoOpLogger())
	assert.Error(t, err)
}
