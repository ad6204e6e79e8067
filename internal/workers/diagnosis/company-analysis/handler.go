package companyanalysis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"policyfund-workers/internal/analysis"
	perrors "policyfund-workers/internal/common/errors"
	"policyfund-workers/internal/common/logger"
	"policyfund-workers/internal/common/metrics"
	"policyfund-workers/internal/models"
)

const (
	TaskType = "company-analysis"
)

type ProfileResolver interface {
	ResolveProfile(ctx context.Context, applicantID string, fields map[string]interface{}) (models.Profile, error)
}

type Handler struct {
	config     *Config
	profiles   ProfileResolver
	errHandler *perrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, profiles ProfileResolver, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		profiles:   profiles,
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
	profile, err := h.profiles.ResolveProfile(ctx, input.ApplicantID, input.Profile)
	if err != nil {
		return nil, err
	}

	report := analysis.Analyze(profile)
	return &Output{
		OverallScore: report.OverallScore,
		OverallLevel: report.OverallLevel,
		Summary:      report.Summary,
		Strengths:    report.Strengths,
		Weaknesses:   report.Weaknesses,
		Dimensions:   report.Dimensions,
	}, nil
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
