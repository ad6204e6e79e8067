// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"policyfund-workers/internal/applicant"
	awsclients "policyfund-workers/internal/common/aws"
	"policyfund-workers/internal/common/camunda"
	"policyfund-workers/internal/common/config"
	"policyfund-workers/internal/common/database"
	perrors "policyfund-workers/internal/common/errors"
	"policyfund-workers/internal/common/logger"
	"policyfund-workers/internal/common/metrics"
	"policyfund-workers/internal/common/observability"
	"policyfund-workers/internal/funds"

	// Diagnosis Workers (4)
	ca "policyfund-workers/internal/workers/diagnosis/company-analysis"
	efe "policyfund-workers/internal/workers/diagnosis/evaluate-fund-eligibility"
	sd "policyfund-workers/internal/workers/diagnosis/soho-diagnosis"
	std "policyfund-workers/internal/workers/diagnosis/statement-diagnosis"

	// Record Workers (2)
	rds "policyfund-workers/internal/workers/records/record-diagnosis-snapshot"
	sdn "policyfund-workers/internal/workers/records/send-diagnosis-notification"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err,
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	if err := run(cfg, log); err != nil {
		zapLog.Fatal("worker manager failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log logger.Logger) error {
	log.Info("starting worker manager", map[string]interface{}{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	ctx := context.Background()

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		log.Warn("otel exporter unavailable, job metrics limited to prometheus", map[string]interface{}{"error": err})
	}
	defer obs.Shutdown(context.Background())

	// --- Fund catalogue ---
	store, err := loadCatalogue(cfg.Catalogue, log)
	if err != nil {
		return err
	}

	// --- PostgreSQL ---
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return err
	}
	defer pg.Close()
	if err := retryWithBackoff(func() error { return pg.Ping(ctx) }, 15, 2*time.Second, log, "PostgreSQL connection"); err != nil {
		return err
	}
	log.Info("PostgreSQL connected", nil)

	// --- Redis ---
	var rdb *redis.Client
	if cfg.Cache.Enabled {
		rc, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		defer rc.Close()
		if err := retryWithBackoff(func() error { return rc.Ping(ctx) }, 10, 2*time.Second, log, "Redis connection"); err != nil {
			return err
		}
		rdb = rc.Client
		log.Info("Redis connected", nil)
	}

	// --- Elasticsearch ---
	var es *elasticsearch.Client
	if cfg.Database.Elasticsearch.Enabled {
		esc, err := database.NewElasticsearch(cfg.Database.Elasticsearch, nil)
		if err != nil {
			return err
		}
		if err := retryWithBackoff(func() error { return esc.Ping(ctx) }, 15, 2*time.Second, log, "Elasticsearch connection"); err != nil {
			return err
		}
		es = esc.Client
		log.Info("Elasticsearch connected", nil)
	}

	// --- AWS notification clients ---
	var sesClient awsclients.SESAPI
	var snsClient awsclients.SNSAPI
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		sc, nc, err := awsclients.NewClients(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			return err
		}
		sesClient, snsClient = sc, nc
	}

	// --- Zeebe ---
	zc, err := camunda.Connect(ctx, camunda.ConfigFrom(cfg.Camunda), log)
	if err != nil {
		return err
	}
	defer zc.Close()

	applicants := applicant.NewRepository(pg.DB, rdb, cfg.Cache.ApplicantTTLDuration(), log)

	// --- Register workers ---
	var workers []*camunda.Worker
	if config.IsWorkerEnabled(cfg, sd.TaskType) {
		h := sd.NewHandler(sd.LoadConfig(cfg), store, applicants, rdb, log)
		workers = append(workers, camunda.StartWorker(zc, sd.TaskType, config.GetWorkerConfig(cfg, sd.TaskType), h.Handle, obs, log))
	}
	if config.IsWorkerEnabled(cfg, efe.TaskType) {
		h := efe.NewHandler(efe.LoadConfig(cfg), store, applicants, obs, log)
		workers = append(workers, camunda.StartWorker(zc, efe.TaskType, config.GetWorkerConfig(cfg, efe.TaskType), h.Handle, obs, log))
	}
	if config.IsWorkerEnabled(cfg, std.TaskType) {
		h := std.NewHandler(std.LoadConfig(cfg), applicants, log)
		workers = append(workers, camunda.StartWorker(zc, std.TaskType, config.GetWorkerConfig(cfg, std.TaskType), h.Handle, obs, log))
	}
	if config.IsWorkerEnabled(cfg, ca.TaskType) {
		h := ca.NewHandler(ca.LoadConfig(cfg), applicants, log)
		workers = append(workers, camunda.StartWorker(zc, ca.TaskType, config.GetWorkerConfig(cfg, ca.TaskType), h.Handle, obs, log))
	}
	if config.IsWorkerEnabled(cfg, rds.TaskType) {
		h := rds.NewHandler(rds.LoadConfig(cfg), pg.DB, es, log)
		workers = append(workers, camunda.StartWorker(zc, rds.TaskType, config.GetWorkerConfig(cfg, rds.TaskType), h.Handle, obs, log))
	}
	if config.IsWorkerEnabled(cfg, sdn.TaskType) {
		h := sdn.NewHandler(sdn.LoadConfig(cfg), pg.DB, sesClient, snsClient, log)
		workers = append(workers, camunda.StartWorker(zc, sdn.TaskType, config.GetWorkerConfig(cfg, sdn.TaskType), h.Handle, obs, log))
	}
	log.Info("workers registered", map[string]interface{}{"count": len(workers)})

	// --- Health & Metrics Server ---
	srv := newHealthServer(cfg.Server.HealthPort, newReadiness(pg, rdb, zc, store, log), log)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("health/metrics server failed", map[string]interface{}{"error": err})
		}
	}()

	// --- Signals ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	for sig := range sigCh {
		if sig == syscall.SIGHUP {
			reloadCatalogue(store, cfg.Catalogue, log)
			continue
		}
		break
	}

	log.Info("shutdown signal received, stopping workers", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("health server shutdown", map[string]interface{}{"error": err})
	}
	for _, w := range workers {
		w.Stop()
	}

	log.Info("worker manager stopped gracefully", nil)
	return nil
}

func loadCatalogue(cfg config.CatalogueConfig, log logger.Logger) (*funds.Store, error) {
	if cfg.Path == "" {
		c := funds.DefaultCatalogue()
		log.Info("using built-in fund catalogue", map[string]interface{}{
			"version": c.Version(),
			"funds":   c.Len(),
		})
		return funds.NewStore(c), nil
	}

	c, err := funds.LoadFile(cfg.Path)
	if err != nil {
		return nil, perrors.NewCatalogueInvalidError(fmt.Sprintf("%s: %v", cfg.Path, err))
	}
	log.Info("fund catalogue loaded", map[string]interface{}{
		"path":    cfg.Path,
		"version": c.Version(),
		"funds":   c.Len(),
	})
	return funds.NewStore(c), nil
}

func reloadCatalogue(store *funds.Store, cfg config.CatalogueConfig, log logger.Logger) {
	if !cfg.ReloadSignal || cfg.Path == "" {
		log.Info("SIGHUP ignored, catalogue reload disabled", nil)
		return
	}

	previous := store.Load().Version()
	c, err := store.ReloadFromFile(cfg.Path)
	if err != nil {
		metrics.CatalogueReloads.WithLabelValues("failed").Inc()
		log.Error("catalogue reload failed, keeping active catalogue", map[string]interface{}{
			"error":   err,
			"version": previous,
		})
		return
	}
	metrics.CatalogueReloads.WithLabelValues("ok").Inc()
	log.Info("catalogue reloaded", map[string]interface{}{
		"previous": previous,
		"version":  c.Version(),
		"funds":    c.Len(),
	})
}
