package senddiagnosisnotification

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	awsclients "policyfund-workers/internal/common/aws"
	perrors "policyfund-workers/internal/common/errors"
	"policyfund-workers/internal/common/logger"
	"policyfund-workers/internal/common/metrics"
	"policyfund-workers/internal/models"
)

const (
	TaskType = "send-diagnosis-notification"
)

type Handler struct {
	config     *Config
	db         *sql.DB
	sesClient  awsclients.SESAPI
	snsClient  awsclients.SNSAPI
	errHandler *perrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, db *sql.DB, sesClient awsclients.SESAPI, snsClient awsclients.SNSAPI, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		db:         db,
		sesClient:  sesClient,
		snsClient:  snsClient,
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
	output := &Output{
		ID:          uuid.New().String(),
		ApplicantID: input.ApplicantID,
		Channels:    []string{},
		Status:      models.NotificationDisabled,
		SentAt:      time.Now().UTC().Format(time.RFC3339),
	}
	if !h.config.EmailEnabled && !h.config.SMSEnabled {
		return output, nil
	}

	email, phone, err := h.getRecipientContact(ctx, input.ApplicantID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, perrors.NewRecipientNotFoundError(input.ApplicantID)
	}
	if err != nil {
		return nil, perrors.NewApplicantLookupFailedError(err)
	}

	subject, err := render(subjectTemplate, input)
	if err != nil {
		return nil, perrors.NewInternalError(err)
	}
	output.Subject = subject

	if h.config.EmailEnabled && email != "" {
		body, err := render(emailTemplate, input)
		if err != nil {
			return nil, perrors.NewInternalError(err)
		}
		if err := h.sendEmail(ctx, email, subject, body); err != nil {
			h.logger.Error("email send failed", map[string]interface{}{
				"error":       err,
				"applicantId": input.ApplicantID,
			})
			return nil, perrors.NewNotificationSendFailedError(models.ChannelEmail, err)
		}
		output.Channels = append(output.Channels, models.ChannelEmail)
	}

	if h.config.SMSEnabled && phone != "" {
		msg, err := render(smsTemplate, input)
		if err != nil {
			return nil, perrors.NewInternalError(err)
		}
		if err := h.sendSMS(ctx, phone, msg); err != nil {
			h.logger.Error("SMS send failed", map[string]interface{}{
				"error":       err,
				"applicantId": input.ApplicantID,
			})
			return nil, perrors.NewNotificationSendFailedError(models.ChannelSMS, err)
		}
		output.Channels = append(output.Channels, models.ChannelSMS)
	}

	if len(output.Channels) > 0 {
		output.Status = models.NotificationSent
	}

	h.logger.Info("diagnosis notification processed", map[string]interface{}{
		"applicantId": input.ApplicantID,
		"status":      output.Status,
		"channels":    output.Channels,
	})
	return output, nil
}

func (h *Handler) getRecipientContact(ctx context.Context, applicantID string) (string, string, error) {
	var email, phone sql.NullString
	err := h.db.QueryRowContext(ctx,
		`SELECT email, phone FROM applicants WHERE id = $1`, applicantID).Scan(&email, &phone)
	return email.String, phone.String, err
}

func (h *Handler) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	return err
}

func (h *Handler) sendSMS(ctx context.Context, to, message string) error {
	input := &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	}
	if h.config.SMSSenderID != "" {
		input.MessageAttributes = map[string]snstypes.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {DataType: aws.String("String"), StringValue: aws.String(h.config.SMSSenderID)},
		}
	}
	_, err := h.snsClient.Publish(ctx, input)
	return err
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
