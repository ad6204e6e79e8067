package statementdiagnosis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	perrors "policyfund-workers/internal/common/errors"
	"policyfund-workers/internal/common/logger"
	"policyfund-workers/internal/common/metrics"
	"policyfund-workers/internal/models"
	"policyfund-workers/internal/statement"
)

const (
	TaskType = "statement-diagnosis"
)

type StatementResolver interface {
	ResolveStatements(ctx context.Context, applicantID string, series []map[string]interface{}, limit int) ([]models.FinancialStatement, error)
}

type Handler struct {
	config     *Config
	statements StatementResolver
	errHandler *perrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, statements StatementResolver, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		statements: statements,
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
	series, err := h.statements.ResolveStatements(ctx, input.ApplicantID, input.Statements, statement.MaxYears)
	if err != nil {
		return nil, err
	}

	result, err := statement.Analyze(series)
	if errors.Is(err, statement.ErrInvalidSeries) {
		return nil, perrors.NewStatementSeriesInvalidError(err.Error())
	}
	if err != nil {
		return nil, perrors.NewInternalError(err)
	}

	metrics.DiagnosisGrades.WithLabelValues(models.VariantStatement, string(result.Grade)).Inc()
	metrics.DiagnosisLoanLimit.WithLabelValues(models.VariantStatement).Observe(float64(result.MaxLoanLimit))

	h.logger.Info("statement diagnosis completed", map[string]interface{}{
		"applicantId":  input.ApplicantID,
		"years":        result.Years,
		"grade":        string(result.Grade),
		"healthScore":  result.HealthScore,
		"maxLoanLimit": result.MaxLoanLimit,
	})

	return &Output{
		Grade:            result.Grade,
		Score:            result.Score.Total,
		HealthScore:      result.HealthScore,
		MaxLoanLimit:     result.MaxLoanLimit,
		Ratios:           result.Ratios,
		RecommendedFunds: result.FundTerms(),
		Years:            result.Years,
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
