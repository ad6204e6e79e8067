package applicant

import (
	"context"
	"errors"

	perrors "policyfund-workers/internal/common/errors"
	"policyfund-workers/internal/common/validation"
	"policyfund-workers/internal/models"
)

// ResolveProfile returns the inline profile fields when present, checked
// against validation.ProfileSchema, and otherwise the stored profile of
// applicantID. Failures are *errors.StandardError values.
func (r *Repository) ResolveProfile(ctx context.Context, applicantID string, fields map[string]interface{}) (models.Profile, error) {
	if fields != nil {
		if err := validation.ProfileSchema.Validate(fields); err != nil {
			return models.Profile{}, perrors.NewProfileValidationFailedError(err.Error())
		}
		return models.ProfileFromFields(fields), nil
	}

	if applicantID == "" {
		return models.Profile{}, perrors.NewProfileValidationFailedError("either profile or applicantId is required")
	}

	p, err := r.Profile(ctx, applicantID)
	switch {
	case err == nil:
		return p, nil
	case errors.Is(err, ErrNotFound):
		return models.Profile{}, perrors.NewApplicantNotFoundError(applicantID)
	case errors.Is(err, context.DeadlineExceeded):
		return models.Profile{}, perrors.NewTimeoutError("postgres", err)
	default:
		return models.Profile{}, perrors.NewApplicantLookupFailedError(err)
	}
}

// ResolveStatements mirrors ResolveProfile for statement series.
func (r *Repository) ResolveStatements(ctx context.Context, applicantID string, series []map[string]interface{}, limit int) ([]models.FinancialStatement, error) {
	if series != nil {
		if err := validation.StatementSeriesSchema.Validate(series); err != nil {
			return nil, perrors.NewStatementSeriesInvalidError(err.Error())
		}
		out := make([]models.FinancialStatement, len(series))
		for i, fields := range series {
			out[i] = models.StatementFromFields(fields)
		}
		return out, nil
	}

	if applicantID == "" {
		return nil, perrors.NewStatementSeriesInvalidError("either statements or applicantId is required")
	}

	out, err := r.Statements(ctx, applicantID, limit)
	switch {
	case err == nil:
		return out, nil
	case errors.Is(err, ErrNotFound):
		return nil, perrors.NewApplicantNotFoundError(applicantID)
	case errors.Is(err, context.DeadlineExceeded):
		return nil, perrors.NewTimeoutError("postgres", err)
	default:
		return nil, perrors.NewApplicantLookupFailedError(err)
	}
}
