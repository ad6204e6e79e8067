// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Input boundary
	ErrCodeParseError              ErrorCode = "PARSE_ERROR"
	ErrCodeProfileValidationFailed ErrorCode = "PROFILE_VALIDATION_FAILED"
	ErrCodeStatementSeriesInvalid  ErrorCode = "STATEMENT_SERIES_INVALID"

	// Applicant storage
	ErrCodeApplicantNotFound     ErrorCode = "APPLICANT_NOT_FOUND"
	ErrCodeApplicantLookupFailed ErrorCode = "APPLICANT_LOOKUP_FAILED"

	// Catalogue
	ErrCodeCatalogueInvalid     ErrorCode = "CATALOGUE_INVALID"
	ErrCodeCatalogueUnavailable ErrorCode = "CATALOGUE_UNAVAILABLE"

	// Persistence and delivery
	ErrCodeSnapshotInvalid        ErrorCode = "SNAPSHOT_INVALID"
	ErrCodeSnapshotInsertFailed   ErrorCode = "SNAPSHOT_INSERT_FAILED"
	ErrCodeSnapshotIndexFailed    ErrorCode = "SNAPSHOT_INDEX_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeRecipientNotFound      ErrorCode = "RECIPIENT_NOT_FOUND"
	ErrCodeCacheUnavailable       ErrorCode = "CACHE_UNAVAILABLE"

	ErrCodeTimeout  ErrorCode = "TIMEOUT_ERROR"
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key to the error's metadata and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewParseError is returned when job variables cannot be decoded.
func NewParseError(err error) *StandardError {
	return newError(ErrCodeParseError, "Failed to parse job variables", err.Error(), false)
}

// NewProfileValidationFailedError reports input that failed the boundary schema.
func NewProfileValidationFailedError(details string) *StandardError {
	return newError(ErrCodeProfileValidationFailed, "Applicant profile validation failed", details, false)
}

func NewStatementSeriesInvalidError(details string) *StandardError {
	return newError(ErrCodeStatementSeriesInvalid, "Financial statement series is invalid", details, false)
}

func NewApplicantNotFoundError(applicantID string) *StandardError {
	return newError(ErrCodeApplicantNotFound, "Applicant not found", fmt.Sprintf("applicantId: %s", applicantID), false).
		WithMetadata("applicantId", applicantID)
}

// NewApplicantLookupFailedError is retryable; storage may recover.
func NewApplicantLookupFailedError(err error) *StandardError {
	return newError(ErrCodeApplicantLookupFailed, "Database error during applicant lookup", err.Error(), true)
}

func NewCatalogueInvalidError(details string) *StandardError {
	return newError(ErrCodeCatalogueInvalid, "Fund catalogue failed validation", details, false)
}

func NewCatalogueUnavailableError() *StandardError {
	return newError(ErrCodeCatalogueUnavailable, "No fund catalogue loaded", "", true)
}

func NewSnapshotInvalidError(details string) *StandardError {
	return newError(ErrCodeSnapshotInvalid, "Diagnosis snapshot is incomplete", details, false)
}

func NewSnapshotInsertFailedError(err error) *StandardError {
	return newError(ErrCodeSnapshotInsertFailed, "Diagnosis snapshot insert failed", err.Error(), true)
}

func NewSnapshotIndexFailedError(err error) *StandardError {
	return newError(ErrCodeSnapshotIndexFailed, "Diagnosis snapshot indexing failed", err.Error(), true)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("channel: %s, error: %s", channel, err.Error()), true)
}

func NewRecipientNotFoundError(applicantID string) *StandardError {
	return newError(ErrCodeRecipientNotFound, "No contact details for applicant", fmt.Sprintf("applicantId: %s", applicantID), false)
}

func NewCacheUnavailableError(err error) *StandardError {
	return newError(ErrCodeCacheUnavailable, "Cache unavailable", err.Error(), true)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), err.Error(), true)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false)
}

// AsStandardError unwraps err looking for a *StandardError.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the error codes modelled on boundary events.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeParseError:              "PARSE_ERROR",
	ErrCodeProfileValidationFailed: "PROFILE_VALIDATION_FAILED",
	ErrCodeStatementSeriesInvalid:  "STATEMENT_SERIES_INVALID",
	ErrCodeApplicantNotFound:       "APPLICANT_NOT_FOUND",
	ErrCodeApplicantLookupFailed:   "APPLICANT_LOOKUP_FAILED",
	ErrCodeCatalogueInvalid:        "CATALOGUE_INVALID",
	ErrCodeCatalogueUnavailable:    "CATALOGUE_UNAVAILABLE",
	ErrCodeSnapshotInvalid:         "SNAPSHOT_INVALID",
	ErrCodeSnapshotInsertFailed:    "SNAPSHOT_INSERT_FAILED",
	ErrCodeSnapshotIndexFailed:     "SNAPSHOT_INDEX_FAILED",
	ErrCodeNotificationSendFailed:  "NOTIFICATION_SEND_FAILED",
	ErrCodeRecipientNotFound:       "RECIPIENT_NOT_FOUND",
	ErrCodeCacheUnavailable:        "CACHE_UNAVAILABLE",
	ErrCodeTimeout:                 "TIMEOUT_ERROR",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeApplicantLookupFailed,
		ErrCodeSnapshotInsertFailed,
		ErrCodeNotificationSendFailed:
		return 3

	case ErrCodeSnapshotIndexFailed,
		ErrCodeCacheUnavailable,
		ErrCodeCatalogueUnavailable,
		ErrCodeTimeout:
		return 2

	default:
		return 0 // business errors are thrown, not retried
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory groups codes for log aggregation.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "APPLICANT") || strings.Contains(codeStr, "RECIPIENT"):
		return "APPLICANT"
	case strings.Contains(codeStr, "CATALOGUE"):
		return "CATALOGUE"
	case strings.Contains(codeStr, "SNAPSHOT"):
		return "PERSISTENCE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "PARSE"):
		return "VALIDATION"
	case strings.Contains(codeStr, "TIMEOUT"):
		return "TIMEOUT"
	default:
		return "INTERNAL"
	}
}
