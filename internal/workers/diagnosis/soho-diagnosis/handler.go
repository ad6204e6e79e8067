package sohodiagnosis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"

	perrors "policyfund-workers/internal/common/errors"
	"policyfund-workers/internal/common/logger"
	"policyfund-workers/internal/common/metrics"
	"policyfund-workers/internal/diagnosis"
	"policyfund-workers/internal/funds"
	"policyfund-workers/internal/models"
)

const (
	TaskType = "soho-diagnosis"
)

type ProfileResolver interface {
	ResolveProfile(ctx context.Context, applicantID string, fields map[string]interface{}) (models.Profile, error)
}

type Handler struct {
	config     *Config
	store      *funds.Store
	profiles   ProfileResolver
	redis      *redis.Client
	errHandler *perrors.ErrorHandler
	logger     logger.Logger
}

// NewHandler builds the handler. rdb may be nil, which disables result caching.
func NewHandler(config *Config, store *funds.Store, profiles ProfileResolver, rdb *redis.Client, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		store:      store,
		profiles:   profiles,
		redis:      rdb,
		errHandler: perrors.NewErrorHandler(log),
		logger:     log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, perrors.NewParseError(err), start)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err, start)
		return
	}

	h.completeJob(client, job, output, start)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	catalogue := h.store.Load()
	if catalogue == nil {
		return nil, perrors.NewCatalogueUnavailableError()
	}

	profile, err := h.profiles.ResolveProfile(ctx, input.ApplicantID, input.Profile)
	if err != nil {
		return nil, err
	}

	key := CacheKey(catalogue.Version(), profile)
	if output, ok := h.cachedOutput(ctx, key); ok {
		return output, nil
	}

	result := diagnosis.Diagnose(catalogue, profile)

	metrics.DiagnosisGrades.WithLabelValues(models.VariantPointInTime, string(result.Grade)).Inc()
	metrics.DiagnosisLoanLimit.WithLabelValues(models.VariantPointInTime).Observe(float64(result.MaxLoanLimit))
	for _, f := range result.RecommendedFunds {
		metrics.FundEligible.WithLabelValues(f.Name).Inc()
	}

	h.logger.Info("diagnosis completed", map[string]interface{}{
		"applicantId":      input.ApplicantID,
		"grade":            string(result.Grade),
		"score":            result.Score.Total,
		"maxLoanLimit":     result.MaxLoanLimit,
		"eligibleFunds":    len(result.RecommendedFunds),
		"catalogueVersion": result.CatalogueVersion,
	})

	output := &Output{
		Grade:            result.Grade,
		Score:            result.Score.Total,
		MaxLoanLimit:     result.MaxLoanLimit,
		RecommendedFunds: result.RecommendedFundTerms(),
		Details:          result.Details,
		CatalogueVersion: result.CatalogueVersion,
	}
	h.cacheOutput(ctx, key, output)
	return output, nil
}

// CacheKey identifies a diagnosis by catalogue version and the canonical
// profile, so a catalogue reload never serves stale results.
func CacheKey(catalogueVersion string, p models.Profile) string {
	data, _ := json.Marshal(p)
	sum := sha256.Sum256(data)
	return "diagnosis:" + catalogueVersion + ":" + hex.EncodeToString(sum[:16])
}

func (h *Handler) cachedOutput(ctx context.Context, key string) (*Output, bool) {
	if h.redis == nil || !h.config.CacheEnabled {
		return nil, false
	}

	val, err := h.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.DiagnosisCache.WithLabelValues("miss").Inc()
		} else {
			metrics.DiagnosisCache.WithLabelValues("error").Inc()
			h.logger.Warn("diagnosis cache read failed", map[string]interface{}{"error": err})
		}
		return nil, false
	}

	var output Output
	if err := json.Unmarshal([]byte(val), &output); err != nil {
		metrics.DiagnosisCache.WithLabelValues("error").Inc()
		return nil, false
	}
	metrics.DiagnosisCache.WithLabelValues("hit").Inc()
	output.Cached = true
	return &output, true
}

func (h *Handler) cacheOutput(ctx context.Context, key string, output *Output) {
	if h.redis == nil || !h.config.CacheEnabled {
		return
	}
	data, _ := json.Marshal(output)
	if err := h.redis.Set(ctx, key, data, h.config.CacheTTL).Err(); err != nil {
		h.logger.Warn("diagnosis cache write failed", map[string]interface{}{"error": err})
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output, start time.Time) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.failJob(client, job, perrors.NewInternalError(err), start)
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
	metrics.ObserveJob(TaskType, "", time.Since(start).Seconds())
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error, start time.Time) {
	code := string(perrors.ErrCodeInternal)
	if stdErr, ok := perrors.AsStandardError(err); ok {
		code = string(stdErr.Code)
	}
	metrics.ObserveJob(TaskType, code, time.Since(start).Seconds())
	h.errHandler.HandleJobError(context.Background(), client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
