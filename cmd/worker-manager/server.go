package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"policyfund-workers/internal/common/camunda"
	"policyfund-workers/internal/common/database"
	"policyfund-workers/internal/common/logger"
	"policyfund-workers/internal/funds"
)

type check func(ctx context.Context) error

// readiness reports whether every dependency a worker needs is reachable.
// checks is fixed at construction and only read while serving.
type readiness struct {
	pg     *database.PostgresClient
	store  *funds.Store
	logger logger.Logger
	checks map[string]check
}

// newReadiness registers a check for the catalogue and for every client
// that is configured; nil clients are skipped.
func newReadiness(pg *database.PostgresClient, rdb *redis.Client, zc *camunda.Client, store *funds.Store, log logger.Logger) *readiness {
	checks := map[string]check{
		"catalogue": func(context.Context) error {
			if store == nil || store.Load() == nil {
				return fmt.Errorf("no catalogue loaded")
			}
			return nil
		},
	}
	if pg != nil {
		checks["postgres"] = pg.Ping
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	if zc != nil {
		checks["zeebe"] = zc.HealthCheck
	}
	return &readiness{pg: pg, store: store, logger: log, checks: checks}
}

func (r *readiness) handle(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string)
	for name, fn := range r.checks {
		if err := fn(ctx); err != nil {
			status = http.StatusServiceUnavailable
			results[name] = err.Error()
			r.logger.Warn("readiness check failed", map[string]interface{}{
				"check": name,
				"error": err,
			})
			continue
		}
		results[name] = "ok"
	}

	body := map[string]interface{}{
		"status": "ready",
		"checks": results,
		"time":   time.Now().Format(time.RFC3339),
	}
	if status != http.StatusOK {
		body["status"] = "not_ready"
	}
	if r.pg != nil {
		body["postgresPool"] = r.pg.Stats()
	}
	if r.store != nil {
		if c := r.store.Load(); c != nil {
			body["catalogueVersion"] = c.Version()
		}
	}
	writeJSON(w, status, body)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func newHealthMux(ready *readiness) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/ready", ready.handle)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func newHealthServer(port int, ready *readiness, log logger.Logger) *http.Server {
	addr := fmt.Sprintf(":%d", port)
	log.Info("health/metrics server listening", map[string]interface{}{"addr": addr})
	return &http.Server{
		Addr:              addr,
		Handler:           newHealthMux(ready),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
