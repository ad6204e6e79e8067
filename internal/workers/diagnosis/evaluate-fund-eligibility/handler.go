package evaluatefundeligibility

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	perrors "policyfund-workers/internal/common/errors"
	"policyfund-workers/internal/common/logger"
	"policyfund-workers/internal/common/metrics"
	"policyfund-workers/internal/funds"
	"policyfund-workers/internal/models"
)

const (
	TaskType = "evaluate-fund-eligibility"
)

type ProfileResolver interface {
	ResolveProfile(ctx context.Context, applicantID string, fields map[string]interface{}) (models.Profile, error)
}

// EvaluationRecorder is satisfied by observability.Observability.
type EvaluationRecorder interface {
	RecordEvaluation(ctx context.Context, catalogueVersion string, funds int)
}

type Handler struct {
	config     *Config
	store      *funds.Store
	profiles   ProfileResolver
	recorder   EvaluationRecorder
	errHandler *perrors.ErrorHandler
	logger     logger.Logger
}

// NewHandler builds the handler. recorder may be nil.
func NewHandler(config *Config, store *funds.Store, profiles ProfileResolver, recorder EvaluationRecorder, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		store:      store,
		profiles:   profiles,
		recorder:   recorder,
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

	categories, err := parseCategories(input.Categories)
	if err != nil {
		return nil, perrors.NewProfileValidationFailedError(err.Error())
	}

	profile, err := h.profiles.ResolveProfile(ctx, input.ApplicantID, input.Profile)
	if err != nil {
		return nil, err
	}

	results := filterCategories(funds.Evaluate(catalogue, profile), categories)
	if h.recorder != nil {
		h.recorder.RecordEvaluation(ctx, catalogue.Version(), len(results))
	}

	output := &Output{
		Evaluations:      results,
		EligibleFunds:    []string{},
		Summary:          funds.Summarise(results),
		CatalogueVersion: catalogue.Version(),
	}
	for _, r := range funds.Eligible(results) {
		output.EligibleFunds = append(output.EligibleFunds, r.Name)
		metrics.FundEligible.WithLabelValues(r.Name).Inc()
	}
	if miss, ok := funds.ClosestMiss(results); ok && miss.PassCount > 0 {
		output.ClosestMiss = &miss
	}

	h.logger.Info("fund eligibility evaluated", map[string]interface{}{
		"applicantId": input.ApplicantID,
		"total":       output.Summary.Total,
		"eligible":    output.Summary.Eligible,
		"partial":     output.Summary.Partial,
	})
	return output, nil
}

func parseCategories(raw []string) (map[funds.Category]bool, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	set := make(map[funds.Category]bool, len(raw))
	for _, s := range raw {
		c := funds.Category(s)
		if !c.Valid() {
			return nil, fmt.Errorf("categories: unknown fund category %q", s)
		}
		set[c] = true
	}
	return set, nil
}

func filterCategories(results []funds.Result, categories map[funds.Category]bool) []funds.Result {
	if categories == nil {
		return results
	}
	out := make([]funds.Result, 0, len(results))
	for _, r := range results {
		if categories[r.Category] {
			out = append(out, r)
		}
	}
	return out
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
