package senddiagnosisnotification

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "policyfund-workers/internal/common/errors"
	"policyfund-workers/internal/common/logger/loggertest"
	"policyfund-workers/internal/models"
)

// ==========================
// Mock Implementations
// ==========================

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
	calls         []*ses.SendEmailInput
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.calls = append(m.calls, params)
	if m.SendEmailFunc != nil {
		return m.SendEmailFunc(ctx, params, optFns...)
	}
	return &ses.SendEmailOutput{MessageId: aws.String("ses-1")}, nil
}

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
	calls       []*sns.PublishInput
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.calls = append(m.calls, params)
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, params, optFns...)
	}
	return &sns.PublishOutput{MessageId: aws.String("sns-1")}, nil
}

// ==========================
// Test Helper Functions
// ==========================

const contactQuery = `SELECT email, phone FROM applicants WHERE id = \$1`

func createTestHandler(t *testing.T, cfg *Config) (*Handler, sqlmock.Sqlmock, *MockSESService, *MockSNSService) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sesMock := &MockSESService{}
	snsMock := &MockSNSService{}
	return NewHandler(cfg, db, sesMock, snsMock, loggertest.New(t)), mock, sesMock, snsMock
}

func allChannels() *Config {
	return &Config{
		EmailEnabled: true,
		SMSEnabled:   true,
		FromEmail:    "noreply@policyfund.test",
		SMSSenderID:  "PFUND",
		Timeout:      5 * time.Second,
	}
}

func createTestInput() *Input {
	return &Input{
		ApplicantID:      "app-001",
		Grade:            models.GradeS,
		MaxLoanLimit:     950_000_000,
		RecommendedFunds: []models.RecommendedFund{
			{Name: "SEMAS General Operating Fund", Category: "operating", MaxAmount: 70_000_000, InterestRate: "3.0% (policy rate linked)"},
			{Name: "KODIT Credit Guarantee", Category: "guarantee", MaxAmount: 300_000_000, InterestRate: "Guarantee fee 0.5-1.5%"},
		},
		Details:          "Strong credit and low leverage.",
	}
}

// ==========================
// Tests
// ==========================

func TestHandler_Execute_SendsEmailAndSMS(t *testing.T) {
	h, mock, sesMock, snsMock := createTestHandler(t, allChannels())
	mock.ExpectQuery(contactQuery).
		WithArgs("app-001").
		WillReturnRows(sqlmock.NewRows([]string{"email", "phone"}).AddRow("owner@shop.test", "+821012345678"))

	out, err := h.Execute(context.Background(), createTestInput())
	require.NoError(t, err)

	assert.Equal(t, models.NotificationSent, out.Status)
	assert.Equal(t, []string{models.ChannelEmail, models.ChannelSMS}, out.Channels)
	assert.Equal(t, "Your policy fund diagnosis: grade S", out.Subject)
	assert.NotEmpty(t, out.ID)

	require.Len(t, sesMock.calls, 1)
	email := sesMock.calls[0]
	assert.Equal(t, []string{"owner@shop.test"}, email.Destination.ToAddresses)
	assert.Equal(t, "noreply@policyfund.test", aws.ToString(email.Source))
	body := aws.ToString(email.Message.Body.Text.Data)
	assert.Contains(t, body, "950,000,000 KRW")
	assert.Contains(t, body, "- SEMAS General Operating Fund: up to 70,000,000 KRW, 3.0% (policy rate linked)\n")
	assert.Contains(t, body, "- KODIT Credit Guarantee: up to 300,000,000 KRW, Guarantee fee 0.5-1.5%\n")

	require.Len(t, snsMock.calls, 1)
	sms := snsMock.calls[0]
	assert.Equal(t, "+821012345678", aws.ToString(sms.PhoneNumber))
	assert.Equal(t, "[Policy fund] Grade S, limit 950,000,000 KRW, 2 eligible fund(s).", aws.ToString(sms.Message))
	assert.Equal(t, "PFUND", aws.ToString(sms.MessageAttributes["AWS.SNS.SMS.SenderID"].StringValue))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_NoFundsWording(t *testing.T) {
	cfg := allChannels()
	cfg.SMSEnabled = false
	h, mock, sesMock, _ := createTestHandler(t, cfg)
	mock.ExpectQuery(contactQuery).
		WithArgs("app-001").
		WillReturnRows(sqlmock.NewRows([]string{"email", "phone"}).AddRow("owner@shop.test", nil))

	input := createTestInput()
	input.Grade = models.GradeD
	input.RecommendedFunds = nil

	out, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, []string{models.ChannelEmail}, out.Channels)

	require.Len(t, sesMock.calls, 1)
	assert.Contains(t, aws.ToString(sesMock.calls[0].Message.Body.Text.Data), "No fund is currently fully eligible.")
}

func TestHandler_Execute_MissingContactIsDisabled(t *testing.T) {
	h, mock, sesMock, snsMock := createTestHandler(t, allChannels())
	mock.ExpectQuery(contactQuery).
		WithArgs("app-001").
		WillReturnRows(sqlmock.NewRows([]string{"email", "phone"}).AddRow(nil, nil))

	out, err := h.Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	assert.Equal(t, models.NotificationDisabled, out.Status)
	assert.Empty(t, out.Channels)
	assert.Empty(t, sesMock.calls)
	assert.Empty(t, snsMock.calls)
}

func TestHandler_Execute_ChannelsDisabledSkipsLookup(t *testing.T) {
	h, mock, sesMock, snsMock := createTestHandler(t, &Config{Timeout: time.Second})

	out, err := h.Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	assert.Equal(t, models.NotificationDisabled, out.Status)
	assert.Empty(t, sesMock.calls)
	assert.Empty(t, snsMock.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(mock sqlmock.Sqlmock, sesMock *MockSESService, snsMock *MockSNSService)
		wantCode perrors.ErrorCode
	}{
		{
			name: "recipient not found",
			setup: func(mock sqlmock.Sqlmock, _ *MockSESService, _ *MockSNSService) {
				mock.ExpectQuery(contactQuery).WithArgs("app-001").WillReturnError(sql.ErrNoRows)
			},
			wantCode: perrors.ErrCodeRecipientNotFound,
		},
		{
			name: "lookup failure",
			setup: func(mock sqlmock.Sqlmock, _ *MockSESService, _ *MockSNSService) {
				mock.ExpectQuery(contactQuery).WithArgs("app-001").WillReturnError(errors.New("connection reset"))
			},
			wantCode: perrors.ErrCodeApplicantLookupFailed,
		},
		{
			name: "email send failure",
			setup: func(mock sqlmock.Sqlmock, sesMock *MockSESService, _ *MockSNSService) {
				mock.ExpectQuery(contactQuery).WithArgs("app-001").
					WillReturnRows(sqlmock.NewRows([]string{"email", "phone"}).AddRow("owner@shop.test", "+821012345678"))
				sesMock.SendEmailFunc = func(context.Context, *ses.SendEmailInput, ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
					return nil, errors.New("throttled")
				}
			},
			wantCode: perrors.ErrCodeNotificationSendFailed,
		},
		{
			name: "sms send failure",
			setup: func(mock sqlmock.Sqlmock, _ *MockSESService, snsMock *MockSNSService) {
				mock.ExpectQuery(contactQuery).WithArgs("app-001").
					WillReturnRows(sqlmock.NewRows([]string{"email", "phone"}).AddRow("owner@shop.test", "+821012345678"))
				snsMock.PublishFunc = func(context.Context, *sns.PublishInput, ...func(*sns.Options)) (*sns.PublishOutput, error) {
					return nil, errors.New("opted out")
				}
			},
			wantCode: perrors.ErrCodeNotificationSendFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mock, sesMock, snsMock := createTestHandler(t, allChannels())
			tt.setup(mock, sesMock, snsMock)

			_, err := h.Execute(context.Background(), createTestInput())
			require.Error(t, err)
			stdErr, ok := perrors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, stdErr.Code)
		})
	}
}
