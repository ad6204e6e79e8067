package recorddiagnosissnapshot

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"

	perrors "policyfund-workers/internal/common/errors"
	"policyfund-workers/internal/common/logger"
	"policyfund-workers/internal/common/metrics"
	"policyfund-workers/internal/models"
)

const (
	TaskType = "record-diagnosis-snapshot"
)

type Handler struct {
	config     *Config
	db         *sql.DB
	es         *elasticsearch.Client
	errHandler *perrors.ErrorHandler
	logger     logger.Logger
	now        func() time.Time
}

// NewHandler builds the handler. es may be nil when search indexing is disabled.
func NewHandler(config *Config, db *sql.DB, es *elasticsearch.Client, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		db:         db,
		es:         es,
		errHandler: perrors.NewErrorHandler(log),
		logger:     log,
		now:        time.Now,
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
	if err := validateInput(input); err != nil {
		return nil, err
	}

	snapshot := models.DiagnosisSnapshot{
		ID:               uuid.New().String(),
		ApplicantID:      input.ApplicantID,
		Variant:          input.Variant,
		Grade:            input.Grade,
		MaxLoanLimit:     input.MaxLoanLimit,
		RecommendedFunds: input.RecommendedFunds,
		Narrative:        input.Details,
		CatalogueVersion: input.CatalogueVersion,
		Inputs:           input.Inputs,
		CreatedAt:        h.now().UTC(),
	}
	if snapshot.RecommendedFunds == nil {
		snapshot.RecommendedFunds = []models.RecommendedFund{}
	}

	if err := h.insert(ctx, snapshot); err != nil {
		return nil, perrors.NewSnapshotInsertFailedError(err)
	}

	indexed := false
	if h.es != nil {
		if err := h.index(ctx, snapshot); err != nil {
			// Best effort: the Postgres row is authoritative.
			h.logger.Warn("snapshot indexing failed", map[string]interface{}{
				"snapshotId": snapshot.ID,
				"error":      err,
			})
		} else {
			indexed = true
		}
	}

	h.logger.Info("diagnosis snapshot recorded", map[string]interface{}{
		"snapshotId":  snapshot.ID,
		"applicantId": snapshot.ApplicantID,
		"variant":     snapshot.Variant,
		"grade":       string(snapshot.Grade),
		"indexed":     indexed,
	})

	return &Output{
		SnapshotID: snapshot.ID,
		CreatedAt:  snapshot.CreatedAt.Format(time.RFC3339),
		Indexed:    indexed,
	}, nil
}

func validateInput(input *Input) error {
	switch {
	case input.ApplicantID == "":
		return perrors.NewSnapshotInvalidError("applicantId is required")
	case input.Variant != models.VariantPointInTime && input.Variant != models.VariantStatement:
		return perrors.NewSnapshotInvalidError(fmt.Sprintf("unknown variant %q", input.Variant))
	case !input.Grade.Valid():
		return perrors.NewSnapshotInvalidError(fmt.Sprintf("unknown grade %q", input.Grade))
	}
	return nil
}

// insert writes the snapshot and its audit entry in one transaction.
func (h *Handler) insert(ctx context.Context, s models.DiagnosisSnapshot) error {
	funds, err := json.Marshal(s.RecommendedFunds)
	if err != nil {
		return fmt.Errorf("marshal funds: %w", err)
	}
	inputs, err := json.Marshal(s.Inputs)
	if err != nil {
		return fmt.Errorf("marshal inputs: %w", err)
	}
	audit, _ := json.Marshal(map[string]interface{}{
		"variant":          s.Variant,
		"grade":            s.Grade,
		"maxLoanLimit":     s.MaxLoanLimit,
		"catalogueVersion": s.CatalogueVersion,
	})

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO diagnosis_snapshots (
			id, applicant_id, variant, grade, max_loan_limit,
			recommended_funds, narrative, catalogue_version, inputs, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		s.ID, s.ApplicantID, s.Variant, string(s.Grade), s.MaxLoanLimit,
		funds, s.Narrative, s.CatalogueVersion, inputs, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		"diagnosis_recorded", "diagnosis_snapshot", s.ID, audit, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}

	return tx.Commit()
}

func (h *Handler) index(ctx context.Context, s models.DiagnosisSnapshot) error {
	body, err := json.Marshal(s)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      h.config.Index,
		DocumentID: s.ID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, h.es)
	if err != nil {
		return perrors.NewSnapshotIndexFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return perrors.NewSnapshotIndexFailedError(fmt.Errorf("index %s: %s", h.config.Index, res.Status()))
	}
	return nil
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
